package services

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/session"
	"expensetracker/internal/storage"
)

// ErrInvalidCredentials covers both unknown usernames and wrong
// passwords, so a caller cannot tell which one failed.
var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService struct {
	storage  *storage.SQLiteRepository
	sessions *session.Manager
}

func NewAuthService(storage *storage.SQLiteRepository, sessions *session.Manager) *AuthService {
	return &AuthService{storage: storage, sessions: sessions}
}

// Register validates the input, hashes the password and creates the
// user. Returns storage.ErrUsernameTaken when the username exists.
func (s *AuthService) Register(ctx context.Context, username, password, confirm string) (int64, error) {
	if err := core.ValidateUsername(username); err != nil {
		return 0, err
	}
	if err := core.ValidatePassword(password); err != nil {
		return 0, err
	}
	if password != confirm {
		return 0, core.ErrPasswordMismatch
	}

	digest, salt, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	return s.storage.CreateUser(ctx, username, digest, salt)
}

// VerifyCredentials reports whether username and password match a
// stored user. Unknown usernames verify as false, not as a distinct
// error.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	u, err := s.storage.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return auth.VerifyPassword(password, u.PasswordHash, u.Salt), nil
}

// Login verifies the credentials and populates the session slot.
func (s *AuthService) Login(ctx context.Context, username, password string) (core.Session, error) {
	u, err := s.storage.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.Session{}, err
	}

	if !auth.VerifyPassword(password, u.PasswordHash, u.Salt) {
		return core.Session{}, ErrInvalidCredentials
	}

	if err := s.sessions.Login(ctx, u.Username, u.ID); err != nil {
		return core.Session{}, fmt.Errorf("save session: %w", err)
	}
	return s.sessions.Current(), nil
}

// Logout clears the session slot.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}

// Current returns the session slot as it stands.
func (s *AuthService) Current() core.Session {
	return s.sessions.Current()
}
