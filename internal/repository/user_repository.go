package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/kit-rental/internal/model"
)

// UserRepo stores accounts in the users table keyed by lowercase email.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user whose password is already hashed.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, full_name, phone, address, password_hash, is_admin, loyalty_points, created_at) VALUES (?,?,?,?,?,?,?,?)",
		email, u.FullName, u.Phone, u.Address, u.PasswordHash, u.IsAdmin, u.LoyaltyPoints, u.CreatedAt.UTC())
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT email,full_name,phone,address,password_hash,is_admin,loyalty_points,created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.Email, &u.FullName, &u.Phone, &u.Address, &u.PasswordHash, &u.IsAdmin, &u.LoyaltyPoints, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// AdjustLoyaltyPoints adds delta to the balance in one statement, never
// going below zero, and returns the new balance.
func (r *UserRepo) AdjustLoyaltyPoints(ctx context.Context, email string, delta int) (int, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET loyalty_points = GREATEST(CAST(loyalty_points AS SIGNED) + ?, 0) WHERE email=?",
		delta, email)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// zero rows also happens when the balance was already clamped at 0
		if _, err := r.GetByEmail(ctx, email); err != nil {
			return 0, err
		}
	}
	var points int
	err = r.DB.QueryRowContext(ctx, "SELECT loyalty_points FROM users WHERE email=? LIMIT 1", email).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return points, err
}
