package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/kit-rental/internal/logging"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/repository"
	"github.com/iliyamo/kit-rental/internal/utils"
)

// SignupPoints is the loyalty balance every new account starts with.
const SignupPoints = 50

// UserRepository is the account storage the services need.
type UserRepository interface {
	Create(ctx context.Context, u model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	AdjustLoyaltyPoints(ctx context.Context, email string, delta int) (int, error)
}

// SignupInput is the registration form.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// AdminSeed describes the administrator account created at startup.
type AdminSeed struct {
	Email    string
	Password string
}

// AuthService registers and authenticates users.
type AuthService struct {
	users      UserRepository
	bcryptCost int
	now        func() time.Time
	logger     *logrus.Logger
}

// NewAuthService returns an AuthService hashing passwords at bcryptCost.
func NewAuthService(users UserRepository, bcryptCost int, now func() time.Time, logger *logrus.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{users: users, bcryptCost: bcryptCost, now: now, logger: logging.OrDiscard(logger)}
}

// Signup creates a customer account with the signup points.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (user model.User, err error) {
	email := model.NormalizeEmail(in.Email)
	entry := s.logger.WithFields(logrus.Fields{"component": "auth", "operation": "Signup", "user": email})
	defer func() {
		if err != nil {
			entry.WithError(err).WithField("error_kind", ErrorKind(err)).Warn("signup failed")
			return
		}
		entry.Info("user signed up")
	}()

	vErr := &ValidationError{}
	if email == "" || !strings.Contains(email, "@") {
		vErr.add("email", "a valid email is required")
	}
	if len(in.Password) < utils.MinPasswordLength {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", utils.MinPasswordLength))
	}
	if strings.TrimSpace(in.FullName) == "" {
		vErr.add("full_name", "full name is required")
	}
	if vErr.HasErrors() {
		return model.User{}, vErr
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	user = model.User{
		Email:         email,
		FullName:      strings.TrimSpace(in.FullName),
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
		PasswordHash:  hash,
		LoyaltyPoints: SignupPoints,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	return user, nil
}

// Login checks credentials.  A missing account and a wrong password are
// reported separately so the UI can point new users at sign-up.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, error) {
	email = model.NormalizeEmail(email)
	entry := s.logger.WithFields(logrus.Fields{"component": "auth", "operation": "Login", "user": email})

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		entry.Info("login for unknown user")
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		entry.WithError(err).Error("load user failed")
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		entry.Info("login with incorrect password")
		return model.User{}, ErrIncorrectPassword
	}
	entry.Debug("user logged in")
	return u, nil
}

// Profile returns the stored account for email.
func (s *AuthService) Profile(ctx context.Context, email string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// EnsureAdmin creates the administrator account if it does not exist.
// An existing account with the same email is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	email := model.NormalizeEmail(seed.Email)
	entry := s.logger.WithFields(logrus.Fields{"component": "auth", "operation": "EnsureAdmin", "user": email})
	if email == "" || seed.Password == "" {
		entry.Warn("admin seed skipped: email or password empty")
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := utils.HashPassword(seed.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	err = s.users.Create(ctx, model.User{
		Email:         email,
		FullName:      "Admin User",
		Phone:         "0000000000",
		Address:       "Admin HQ",
		PasswordHash:  hash,
		IsAdmin:       true,
		LoyaltyPoints: 1000,
		CreatedAt:     s.now().UTC(),
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return nil
	}
	if err != nil {
		return err
	}
	entry.Info("admin account seeded")
	return nil
}
