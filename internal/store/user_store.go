package store

import (
	"context"
	"sync"
	"time"

	"diary-service/internal/domain"
)

//go:generate mockgen -destination=mocks/store_mock.go -package=mocks diary-service/internal/store UserStore,MovieStore,DiaryStore

// UserStore persists registered users.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// MemoryUserStore keeps users in memory. Used for local runs and tests.
type MemoryUserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*domain.User
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]*domain.User)}
}

func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return ErrUserAlreadyExists
		}
	}

	m.nextID++
	user.ID = m.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	userCopy := *user
	m.users[user.ID] = &userCopy
	return nil
}

func (m *MemoryUserStore) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[userID]; ok {
		userCopy := *user
		return &userCopy, nil
	}
	return nil, ErrUserNotFound
}

func (m *MemoryUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == username {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}
