package booking

import (
	"context"

	"github.com/iliyamo/kit-rental/internal/model"
)

// EventType names what happened to a booking.
type EventType string

const (
	EventCreated       EventType = "booking.created"
	EventStatusChanged EventType = "booking.status_changed"
)

// Event is handed to the Notifier after a booking is created or its
// status changes, only when the customer opted into updates.
type Event struct {
	Type           EventType
	Booking        model.Booking
	PreviousStatus model.BookingStatus
}

// Notifier delivers booking updates to the customer.  Calls run in the
// background; errors are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
