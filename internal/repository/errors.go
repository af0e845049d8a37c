// Package repository defines error types that are reused across every
// storage backend (MySQL here, plus the memory and badgerstore
// subpackages).  These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without knowing which backend is configured.
package repository

import "errors"

// ErrNotFound is returned when a booking with the requested ID does not
// exist.  Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("booking not found")

// ErrDuplicateID is returned by booking inserts when the generated ID is
// already taken.  The booking manager retries with a fresh ID.
var ErrDuplicateID = errors.New("duplicate booking id")

// ErrUserNotFound is returned when no account matches the email.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when signing up with an email that already
// has an account.  Handlers translate it into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
