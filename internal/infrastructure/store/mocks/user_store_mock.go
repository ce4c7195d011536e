package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/user"
)

// MockUserStore is an in-memory UserStore for testing
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]user.User

	CreateUserErr error
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[string]user.User)}
}

// Seed inserts users directly
func (m *MockUserStore) Seed(users ...user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		m.users[u.ID] = u
	}
}

func (m *MockUserStore) CreateUser(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateUserErr != nil {
		return m.CreateUserErr
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MockUserStore) GetUser(ctx context.Context, id string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	m.users[userID] = u
	return nil
}
