// ABOUTME: Account service for registration, login, and self-service deletion
// ABOUTME: Owns the ownership and email-uniqueness authorization rules

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lotus-studio/bookingd/internal/auth"
	"github.com/lotus-studio/bookingd/internal/store"
)

// ErrEmailTaken is returned when registering with an email that already has an account.
var ErrEmailTaken = errors.New("email is already taken")

// ErrBadCredentials is returned when login fails. The same error covers an
// unknown email and a wrong password so the response does not reveal which.
var ErrBadCredentials = errors.New("bad credentials")

// ErrNotOwner is returned when a user tries to delete an account that is not theirs.
var ErrNotOwner = errors.New("not account owner")

// UserStore is the subset of store.Store the account service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUser(ctx context.Context, id int64) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Service implements account registration, login, lookup, and deletion.
type Service struct {
	users    UserStore
	tokens   auth.TokenGenerator
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService creates an account service. tokenTTL bounds the lifetime of
// tokens issued at login.
func NewService(users UserStore, tokens auth.TokenGenerator, tokenTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "account"),
	}
}

// Register creates a new non-admin account. Returns ErrEmailTaken without
// hashing or persisting anything when the email is already registered.
// Self-registration never produces an admin account.
func (s *Service) Register(ctx context.Context, email, firstName, lastName, password string) error {
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Admin:        false,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// The unique index is the authoritative check; a concurrent register
		// can win between EmailExists and CreateUser.
		if errors.Is(err, store.ErrEmailExists) {
			return ErrEmailTaken
		}
		return fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("registered user", "id", user.ID, "email", user.Email)
	return nil
}

// Login authenticates an email/password pair and issues a JWT on success.
// Both unknown emails and wrong passwords surface as ErrBadCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (token string, user *store.User, err error) {
	user, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}

	token, err = s.tokens.Generate(user.Email, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}

	s.logger.Info("user logged in", "id", user.ID, "email", user.Email)
	return token, user, nil
}

// Get returns the user with the given ID.
func (s *Service) Get(ctx context.Context, id int64) (*store.User, error) {
	return s.users.GetUser(ctx, id)
}

// Delete removes the account with the given ID if it belongs to
// requesterEmail. A missing ID is store.ErrNotFound, checked before the
// ownership comparison; a mismatched owner is ErrNotOwner and nothing is
// deleted.
func (s *Service) Delete(ctx context.Context, id int64, requesterEmail string) error {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if user.Email != requesterEmail {
		return ErrNotOwner
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("deleted account", "id", id, "email", user.Email)
	return nil
}
