// Package session keeps the single in-progress DraftBooking for a browser
// session.  Drafts are keyed by an opaque session ID carried in a
// cookie; a draft never outlives that session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/kit-rental/internal/model"
)

// ErrDraftAbsent is returned by Load when the session has no draft or the
// stored payload can no longer be decoded.
var ErrDraftAbsent = errors.New("no draft booking in session")

// Store is a session-scoped draft slot.  Save overwrites whatever was
// there; Clear is idempotent.
type Store interface {
	Save(ctx context.Context, sessionID string, draft model.DraftBooking) error
	Load(ctx context.Context, sessionID string) (model.DraftBooking, error)
	Clear(ctx context.Context, sessionID string) error
}

func encode(d model.DraftBooking) ([]byte, error) {
	bs, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return bs, nil
}

// decode treats anything that is not a well-formed draft as absent,
// including payloads that decode but carry no stage or kit.
func decode(bs []byte) (model.DraftBooking, error) {
	var d model.DraftBooking
	if len(bs) == 0 {
		return d, ErrDraftAbsent
	}
	if err := json.Unmarshal(bs, &d); err != nil {
		return model.DraftBooking{}, ErrDraftAbsent
	}
	if d.Stage == "" || d.Kit.ID == "" {
		return model.DraftBooking{}, ErrDraftAbsent
	}
	return d, nil
}
