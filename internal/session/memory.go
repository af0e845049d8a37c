package session

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/kit-rental/internal/model"
)

type memEntry struct {
	payload []byte
	expires time.Time
}

// MemoryStore keeps serialized drafts in process memory.  It is used when
// Redis is unavailable and in tests.
type MemoryStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]memEntry
}

// NewMemoryStore returns an empty store.  A ttl of zero keeps drafts until
// they are cleared.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, m: make(map[string]memEntry)}
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, draft model.DraftBooking) error {
	bs, err := encode(draft)
	if err != nil {
		return err
	}
	s.put(sessionID, bs)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (model.DraftBooking, error) {
	s.mu.Lock()
	e, ok := s.m[sessionID]
	if ok && !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.m, sessionID)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return model.DraftBooking{}, ErrDraftAbsent
	}
	return decode(e.payload)
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.m, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) put(sessionID string, payload []byte) {
	e := memEntry{payload: payload}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.m[sessionID] = e
	s.mu.Unlock()
}
