// Package memory is an in-process storage backend used for
// STORAGE_DRIVER=memory and in tests.  All methods are safe for
// concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/repository"
)

type bookingRow struct {
	seq int
	b   model.Booking
}

// BookingRepo keeps bookings in a map guarded by a mutex.
type BookingRepo struct {
	mu   sync.RWMutex
	seq  int
	rows map[string]*bookingRow
}

// NewBookingRepo returns an empty BookingRepo.
func NewBookingRepo() *BookingRepo {
	return &BookingRepo{rows: make(map[string]*bookingRow)}
}

func (r *BookingRepo) Insert(_ context.Context, b model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[b.ID]; ok {
		return repository.ErrDuplicateID
	}
	r.seq++
	r.rows[b.ID] = &bookingRow{seq: r.seq, b: clone(b)}
	return nil
}

func (r *BookingRepo) Get(_ context.Context, id string) (model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return clone(row.b), nil
}

func (r *BookingRepo) ListByUser(_ context.Context, email string) ([]model.Booking, error) {
	email = model.NormalizeEmail(email)
	return r.list(func(b model.Booking) bool { return b.UserEmail == email }), nil
}

func (r *BookingRepo) ListAll(_ context.Context) ([]model.Booking, error) {
	return r.list(func(model.Booking) bool { return true }), nil
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id string, status model.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.b.Status = status
	return nil
}

// list returns matching bookings newest first; rows created in the same
// instant keep reverse insertion order.
func (r *BookingRepo) list(keep func(model.Booking) bool) []model.Booking {
	r.mu.RLock()
	rows := make([]*bookingRow, 0, len(r.rows))
	for _, row := range r.rows {
		if keep(row.b) {
			rows = append(rows, &bookingRow{seq: row.seq, b: clone(row.b)})
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].b.CreatedAt.Equal(rows[j].b.CreatedAt) {
			return rows[i].b.CreatedAt.After(rows[j].b.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]model.Booking, len(rows))
	for i, row := range rows {
		out[i] = row.b
	}
	return out
}

func clone(b model.Booking) model.Booking {
	if b.AddOns != nil {
		sel := make(model.AddOnSelection, len(b.AddOns))
		for k, v := range b.AddOns {
			sel[k] = v
		}
		b.AddOns = sel
	}
	return b
}

// UserRepo keeps accounts keyed by lowercase email.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewUserRepo returns an empty UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]model.User)}
}

func (r *UserRepo) Create(_ context.Context, u model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return repository.ErrEmailExists
	}
	r.users[u.Email] = u
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[model.NormalizeEmail(email)]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

// AdjustLoyaltyPoints adds delta to the balance, flooring at zero, and
// returns the new balance.
func (r *UserRepo) AdjustLoyaltyPoints(_ context.Context, email string, delta int) (int, error) {
	email = model.NormalizeEmail(email)
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	u.LoyaltyPoints += delta
	if u.LoyaltyPoints < 0 {
		u.LoyaltyPoints = 0
	}
	r.users[email] = u
	return u.LoyaltyPoints, nil
}
