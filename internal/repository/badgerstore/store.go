// Package badgerstore is an embedded, file-backed storage backend built on
// badger.  It needs no external database and is selected with
// STORAGE_DRIVER=badger.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/repository"
)

const (
	bookingPrefix = "booking/"
	userPrefix    = "user/"

	conflictRetries = 3
)

// Store wraps a badger database holding bookings and users as JSON
// values.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store under dir.  A nil logger silences
// badger's own output.
func Open(dir string, logger *logrus.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	return open(opts, logger)
}

// OpenInMemory opens a store that keeps everything in memory.
func OpenInMemory(logger *logrus.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	return open(opts, logger)
}

func open(opts badger.Options, logger *logrus.Logger) (*Store, error) {
	if logger != nil {
		opts = opts.WithLogger(logger.WithField("component", "badger"))
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// update runs fn in a read-write transaction, retrying when badger
// reports a conflicting concurrent commit.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, bs)
}

// BookingRepo stores bookings under booking/<id>.
type BookingRepo struct{ s *Store }

func bookingKey(id string) []byte { return []byte(bookingPrefix + id) }

func (r *BookingRepo) Insert(_ context.Context, b model.Booking) error {
	return r.s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(bookingKey(b.ID))
		if err == nil {
			return repository.ErrDuplicateID
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, bookingKey(b.ID), b)
	})
}

func (r *BookingRepo) Get(_ context.Context, id string) (model.Booking, error) {
	var b model.Booking
	err := r.s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, bookingKey(id), &b)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Booking{}, repository.ErrNotFound
	}
	return b, err
}

func (r *BookingRepo) ListByUser(ctx context.Context, email string) ([]model.Booking, error) {
	email = model.NormalizeEmail(email)
	return r.list(ctx, func(b model.Booking) bool { return b.UserEmail == email })
}

func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, func(model.Booking) bool { return true })
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id string, status model.BookingStatus) error {
	err := r.s.update(func(txn *badger.Txn) error {
		var b model.Booking
		if err := getJSON(txn, bookingKey(id), &b); err != nil {
			return err
		}
		b.Status = status
		return setJSON(txn, bookingKey(id), b)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return repository.ErrNotFound
	}
	return err
}

func (r *BookingRepo) list(ctx context.Context, keep func(model.Booking) bool) ([]model.Booking, error) {
	out := []model.Booking{}
	err := r.s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookingPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var b model.Booking
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			}); err != nil {
				return err
			}
			if keep(b) {
				out = append(out, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UserRepo stores accounts under user/<email>.
type UserRepo struct{ s *Store }

func userKey(email string) []byte { return []byte(userPrefix + model.NormalizeEmail(email)) }

func (r *UserRepo) Create(_ context.Context, u model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	return r.s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(u.Email))
		if err == nil {
			return repository.ErrEmailExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, userKey(u.Email), userRecord(u))
	})
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	var rec storedUser
	err := r.s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(email), &rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.User{}, repository.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return rec.user(), nil
}

func (r *UserRepo) AdjustLoyaltyPoints(_ context.Context, email string, delta int) (int, error) {
	var points int
	err := r.s.update(func(txn *badger.Txn) error {
		var rec storedUser
		if err := getJSON(txn, userKey(email), &rec); err != nil {
			return err
		}
		rec.LoyaltyPoints += delta
		if rec.LoyaltyPoints < 0 {
			rec.LoyaltyPoints = 0
		}
		points = rec.LoyaltyPoints
		return setJSON(txn, userKey(email), rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, repository.ErrUserNotFound
	}
	return points, err
}

// storedUser is model.User with the password hash kept in the JSON value,
// which model.User leaves out.
type storedUser struct {
	model.User
	PasswordHash string `json:"password_hash"`
}

func userRecord(u model.User) storedUser {
	return storedUser{User: u, PasswordHash: u.PasswordHash}
}

func (s storedUser) user() model.User {
	u := s.User
	u.PasswordHash = s.PasswordHash
	return u
}
