// Package booking owns the durable booking record: creation with a fresh
// ID, per-user and global listings, and administrative status changes.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/kit-rental/internal/logging"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/repository"
)

var (
	// ErrNotFound is returned when no booking has the requested ID.
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidStatus is returned for a status outside the five known ones.
	ErrInvalidStatus = errors.New("invalid booking status")
	// ErrInvalidBooking is returned when Create is called without an owner,
	// a kit or at least one night.
	ErrInvalidBooking = errors.New("invalid booking details")
	// ErrTransitionNotAllowed is returned when the configured policy
	// rejects a status change.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// maxIDAttempts bounds retries when a generated ID collides.
const maxIDAttempts = 5

// Repository is the storage the manager needs.  Insert must report
// repository.ErrDuplicateID for a taken ID; Get and UpdateStatus report
// repository.ErrNotFound.  Listings are newest first.
type Repository interface {
	Insert(ctx context.Context, b model.Booking) error
	Get(ctx context.Context, id string) (model.Booking, error)
	ListByUser(ctx context.Context, email string) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// TransitionPolicy decides whether a booking may move between statuses.
type TransitionPolicy func(from, to model.BookingStatus) bool

// AllowAll permits every transition, including leaving Completed or
// Cancelled.  Administrators correct mistakes by hand.
func AllowAll(_, _ model.BookingStatus) bool { return true }

// Details is everything a caller supplies to create a booking.
type Details struct {
	UserEmail       string
	Kit             model.Kit
	AddOns          model.AddOnSelection
	StartDate       time.Time
	Nights          int
	TotalPrice      model.Money
	Delivery        model.DeliveryDetails
	WhatsAppUpdates bool
}

// Manager creates and updates bookings.
type Manager struct {
	repo          Repository
	ids           func() string
	now           func() time.Time
	policy        TransitionPolicy
	notifier      Notifier
	notifyTimeout time.Duration
	logger        *logrus.Logger
	wg            sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets the hook told about new bookings and status changes.
func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notifier = n } }

// WithPolicy replaces the transition policy.
func WithPolicy(p TransitionPolicy) Option { return func(m *Manager) { m.policy = p } }

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option { return func(m *Manager) { m.logger = l } }

// WithNotifyTimeout bounds each notifier call.
func WithNotifyTimeout(d time.Duration) Option { return func(m *Manager) { m.notifyTimeout = d } }

// NewManager returns a Manager over repo.  ids allocates booking IDs and
// now stamps creation times; nil now means time.Now.
func NewManager(repo Repository, ids func() string, now func() time.Time, opts ...Option) *Manager {
	if now == nil {
		now = time.Now
	}
	m := &Manager{
		repo:          repo,
		ids:           ids,
		now:           now,
		policy:        AllowAll,
		notifyTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = logging.OrDiscard(m.logger)
	return m
}

func (m *Manager) log(op string) *logrus.Entry {
	return m.logger.WithFields(logrus.Fields{"component": "booking", "operation": op})
}

// Create stores a new booking with the caller's initial status and
// returns its ID once the write has committed.  Identical details create
// distinct bookings.
func (m *Manager) Create(ctx context.Context, d Details, status model.BookingStatus) (id string, err error) {
	entry := m.log("Create").WithFields(logrus.Fields{"user": d.UserEmail, "kit_id": d.Kit.ID, "status": status})
	defer func() {
		if err != nil {
			entry.WithError(err).WithField("error_kind", errorKind(err)).Error("failed to create booking")
			return
		}
		entry.WithField("booking_id", id).Info("booking created")
	}()

	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	email := model.NormalizeEmail(d.UserEmail)
	if email == "" || d.Kit.ID == "" || d.Nights <= 0 || d.StartDate.IsZero() {
		return "", ErrInvalidBooking
	}

	b := model.Booking{
		UserEmail:       email,
		Kit:             d.Kit,
		AddOns:          d.AddOns.Normalized(),
		StartDate:       d.StartDate,
		Nights:          d.Nights,
		TotalPrice:      d.TotalPrice,
		Delivery:        d.Delivery,
		WhatsAppUpdates: d.WhatsAppUpdates,
		Status:          status,
		CreatedAt:       m.now().UTC(),
	}
	for attempt := 1; ; attempt++ {
		b.ID = m.ids()
		err = m.repo.Insert(ctx, b)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateID) || attempt >= maxIDAttempts {
			return "", fmt.Errorf("insert booking: %w", err)
		}
		entry.WithField("booking_id", b.ID).Warn("booking id collision, retrying")
	}

	if b.WhatsAppUpdates {
		m.notify(Event{Type: EventCreated, Booking: b})
	}
	return b.ID, nil
}

// Get returns a single booking.
func (m *Manager) Get(ctx context.Context, id string) (model.Booking, error) {
	b, err := m.repo.Get(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// ListForUser returns the user's bookings, newest first.  The email is
// matched case-insensitively.
func (m *Manager) ListForUser(ctx context.Context, email string) ([]model.Booking, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return []model.Booking{}, nil
	}
	list, err := m.repo.ListByUser(ctx, email)
	if err != nil {
		m.log("ListForUser").WithError(err).Error("failed to list bookings")
		return nil, err
	}
	return list, nil
}

// ListAll returns every booking, newest first.
func (m *Manager) ListAll(ctx context.Context) ([]model.Booking, error) {
	list, err := m.repo.ListAll(ctx)
	if err != nil {
		m.log("ListAll").WithError(err).Error("failed to list bookings")
		return nil, err
	}
	return list, nil
}

// IsTransitionAllowed reports whether the configured policy permits
// moving from one status to another.
func (m *Manager) IsTransitionAllowed(from, to model.BookingStatus) bool {
	return m.policy(from, to)
}

// UpdateStatus changes the status of an existing booking and returns the
// updated record.  Nothing else about the booking changes and no history
// is kept.  Bookings with updates enabled notify on every call, including
// one that sets the current status again.
func (m *Manager) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (b model.Booking, err error) {
	entry := m.log("UpdateStatus").WithFields(logrus.Fields{"booking_id": id, "status": status})
	defer func() {
		if err != nil {
			entry.WithError(err).WithField("error_kind", errorKind(err)).Warn("failed to update booking status")
			return
		}
		entry.Info("booking status updated")
	}()

	if !status.IsValid() {
		return model.Booking{}, ErrInvalidStatus
	}
	b, err = m.repo.Get(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	prev := b.Status
	if !m.IsTransitionAllowed(prev, status) {
		return model.Booking{}, fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, prev, status)
	}
	if err = m.repo.UpdateStatus(ctx, id, status); err != nil {
		return model.Booking{}, err
	}
	b.Status = status

	if b.WhatsAppUpdates {
		m.notify(Event{Type: EventStatusChanged, Booking: b, PreviousStatus: prev})
	}
	return b, nil
}

// Wait blocks until every in-flight notification has finished.
func (m *Manager) Wait() { m.wg.Wait() }

func (m *Manager) notify(ev Event) {
	if m.notifier == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.notifyTimeout)
		defer cancel()
		if err := m.notifier.Notify(ctx, ev); err != nil {
			m.log("notify").WithError(err).WithFields(logrus.Fields{
				"booking_id": ev.Booking.ID,
				"event":      ev.Type,
			}).Warn("booking notification failed")
		}
	}()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidBooking):
		return "validation"
	case errors.Is(err, ErrTransitionNotAllowed):
		return "transition"
	case errors.Is(err, repository.ErrDuplicateID):
		return "duplicate_id"
	}
	return "unexpected"
}
