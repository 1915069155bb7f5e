// Package session tracks the currently authenticated user. The slot is
// a single record persisted through the store, so a prior login survives
// a restart.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

type Manager struct {
	mu      sync.Mutex
	repo    *storage.SQLiteRepository
	current core.Session
}

// NewManager creates a manager and restores any persisted session.
func NewManager(ctx context.Context, repo *storage.SQLiteRepository) (*Manager, error) {
	m := &Manager{repo: repo}

	sess, err := repo.LoadSession(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	m.current = *sess
	return m, nil
}

// Login sets the logged-in user and persists the record. All three
// fields change together.
func (m *Manager) Login(ctx context.Context, username string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.SaveSession(ctx, username, userID); err != nil {
		return err
	}
	m.current = core.Session{LoggedIn: true, Username: username, UserID: userID}
	return nil
}

// Logout clears the slot and the persisted record. Logging out while
// logged out is not an error.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.ClearSession(ctx); err != nil {
		return err
	}
	m.current = core.Session{}
	return nil
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.LoggedIn
}

// Current returns a copy of the session slot.
func (m *Manager) Current() core.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
