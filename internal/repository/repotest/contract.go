// Package repotest holds behaviour checks shared by every storage backend.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/repository"
)

// BookingRepo is the storage surface the booking manager depends on.
type BookingRepo interface {
	Insert(ctx context.Context, b model.Booking) error
	Get(ctx context.Context, id string) (model.Booking, error)
	ListByUser(ctx context.Context, email string) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// UserRepo is the storage surface the auth and checkout services depend on.
type UserRepo interface {
	Create(ctx context.Context, u model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	AdjustLoyaltyPoints(ctx context.Context, email string, delta int) (int, error)
}

var base = time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC)

// Booking builds a confirmed three-night booking created offset minutes
// after a fixed instant.
func Booking(id, email string, offset int) model.Booking {
	return model.Booking{
		ID:         id,
		UserEmail:  email,
		Kit:        model.Kit{ID: "camp-starter", Name: "Camp Starter", PricePerNight: model.Rupees(1500)},
		AddOns:     model.AddOnSelection{"lantern": 1},
		StartDate:  time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		Nights:     3,
		TotalPrice: model.Rupees(4800),
		Delivery:   model.DeliveryDetails{FullName: "Asha Rao", Phone: "9876543210", Method: model.DeliveryPickup},
		Status:     model.StatusConfirmed,
		CreatedAt:  base.Add(time.Duration(offset) * time.Minute),
	}
}

// RunBookingRepo exercises a fresh repository returned by newRepo.
func RunBookingRepo(t *testing.T, newRepo func(t *testing.T) BookingRepo) {
	ctx := context.Background()

	t.Run("insert and get", func(t *testing.T) {
		r := newRepo(t)
		b := Booking("WK-AAAAAA", "asha@example.com", 0)
		require.NoError(t, r.Insert(ctx, b))

		got, err := r.Get(ctx, "WK-AAAAAA")
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, b.Kit, got.Kit)
		assert.Equal(t, b.AddOns, got.AddOns)
		assert.Equal(t, b.TotalPrice, got.TotalPrice)
		assert.Equal(t, b.Delivery, got.Delivery)
		assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

		_, err = r.Get(ctx, "WK-ZZZZZZ")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Insert(ctx, Booking("WK-AAAAAA", "asha@example.com", 0)))
		err := r.Insert(ctx, Booking("WK-AAAAAA", "ravi@example.com", 1))
		assert.ErrorIs(t, err, repository.ErrDuplicateID)

		got, err := r.Get(ctx, "WK-AAAAAA")
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", got.UserEmail)
	})

	t.Run("listing is scoped and newest first", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Insert(ctx, Booking("WK-000001", "asha@example.com", 0)))
		require.NoError(t, r.Insert(ctx, Booking("WK-000002", "ravi@example.com", 1)))
		require.NoError(t, r.Insert(ctx, Booking("WK-000003", "asha@example.com", 2)))

		mine, err := r.ListByUser(ctx, "ASHA@example.com")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "WK-000003", mine[0].ID)
		assert.Equal(t, "WK-000001", mine[1].ID)

		all, err := r.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"WK-000003", "WK-000002", "WK-000001"}, []string{all[0].ID, all[1].ID, all[2].ID})

		none, err := r.ListByUser(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update status", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Insert(ctx, Booking("WK-AAAAAA", "asha@example.com", 0)))
		require.NoError(t, r.UpdateStatus(ctx, "WK-AAAAAA", model.StatusCancelled))

		got, err := r.Get(ctx, "WK-AAAAAA")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, got.Status)
		assert.Equal(t, 3, got.Nights)

		assert.ErrorIs(t, r.UpdateStatus(ctx, "WK-ZZZZZZ", model.StatusCancelled), repository.ErrNotFound)
	})

	t.Run("concurrent inserts", func(t *testing.T) {
		r := newRepo(t)
		var wg sync.WaitGroup
		errs := make(chan error, 50)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- r.Insert(ctx, Booking(fmt.Sprintf("WK-%06d", i), "asha@example.com", i))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		all, err := r.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 50)
	})
}

// RunUserRepo exercises a fresh user repository returned by newRepo.
func RunUserRepo(t *testing.T, newRepo func(t *testing.T) UserRepo) {
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		r := newRepo(t)
		u := model.User{Email: " Asha@Example.com", FullName: "Asha Rao", PasswordHash: "hash", LoyaltyPoints: 50, CreatedAt: base}
		require.NoError(t, r.Create(ctx, u))

		got, err := r.GetByEmail(ctx, "asha@EXAMPLE.com")
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", got.Email)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Equal(t, 50, got.LoyaltyPoints)

		assert.ErrorIs(t, r.Create(ctx, u), repository.ErrEmailExists)

		_, err = r.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("loyalty points never go negative", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Create(ctx, model.User{Email: "asha@example.com", LoyaltyPoints: 60}))

		points, err := r.AdjustLoyaltyPoints(ctx, "asha@example.com", -50)
		require.NoError(t, err)
		assert.Equal(t, 10, points)

		points, err = r.AdjustLoyaltyPoints(ctx, "asha@example.com", -50)
		require.NoError(t, err)
		assert.Equal(t, 0, points)

		points, err = r.AdjustLoyaltyPoints(ctx, "asha@example.com", 25)
		require.NoError(t, err)
		assert.Equal(t, 25, points)

		_, err = r.AdjustLoyaltyPoints(ctx, "ghost@example.com", 1)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}
