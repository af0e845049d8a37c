// Package service holds the application workflows that sit between the
// HTTP handlers and storage: sign-up and login, and the product →
// checkout → payment → confirmation flow.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/kit-rental/internal/booking"
	"github.com/iliyamo/kit-rental/internal/catalog"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/repository"
	"github.com/iliyamo/kit-rental/internal/session"
)

var (
	// ErrUserNotFound is returned by Login when no account has the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword is returned by Login for a wrong password.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrEmailTaken is returned by Signup for an existing email.
	ErrEmailTaken = errors.New("user with this email already exists")
)

// ValidationError captures field level validation issues that callers can
// surface to users.  Nothing is written when one is returned.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed (%d fields)", len(v.FieldErrors))
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// PaymentFailedError means the provider declined.  The draft is kept so
// the customer can retry.
type PaymentFailedError struct {
	Reason string
}

func (e *PaymentFailedError) Error() string {
	if e.Reason == "" {
		return "payment failed"
	}
	return "payment failed: " + e.Reason
}

// DraftStateError is returned when the session has no usable draft for
// the requested step.  KitID is set when the stale draft still names a
// kit, so the customer can be sent back to it.
type DraftStateError struct {
	KitID string
	Err   error
}

func (e *DraftStateError) Error() string { return "draft booking: " + e.Err.Error() }

func (e *DraftStateError) Unwrap() error { return e.Err }

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		vErr *ValidationError
		pErr *PaymentFailedError
		dErr *DraftStateError
	)
	switch {
	case errors.As(err, &vErr):
		return "validation"
	case errors.As(err, &pErr):
		return "payment_failed"
	case errors.As(err, &dErr):
		return "draft_state"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrIncorrectPassword):
		return "invalid_credentials"
	case errors.Is(err, ErrEmailTaken), errors.Is(err, repository.ErrEmailExists):
		return "already_exists"
	case errors.Is(err, catalog.ErrKitNotFound), errors.Is(err, booking.ErrNotFound):
		return "not_found"
	case errors.Is(err, session.ErrDraftAbsent), errors.Is(err, model.ErrIncompleteDraft):
		return "draft_state"
	}
	return "unexpected"
}
