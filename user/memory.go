package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository for tests and local development.
type MemoryRepository struct {
	mu     sync.Mutex
	users  map[string]User
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User), nextID: 1}
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	l := strings.ToLower(*s)
	return &l
}

func (m *MemoryRepository) Create(ctx context.Context, params CreateParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(params.Email)
	wallet := lowerPtr(params.WalletAddress)
	username := lowerPtr(params.Username)
	for _, u := range m.users {
		if u.Email == email {
			return User{}, ErrDuplicate
		}
		if wallet != nil && u.WalletAddress != nil && *u.WalletAddress == *wallet {
			return User{}, ErrDuplicate
		}
		if username != nil && u.Username != nil && *u.Username == *username {
			return User{}, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	u := User{
		ID:            fmt.Sprintf("user-%d", m.nextID),
		WalletAddress: wallet,
		Username:      username,
		Email:         email,
		PasswordHash:  params.PasswordHash,
		AccountType:   params.AccountType,
		Role:          params.Role,
		FirstName:     params.FirstName,
		LastName:      params.LastName,
		Phone:         params.Phone,
		Rating:        5.0,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.nextID++
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemoryRepository) GetByWallet(ctx context.Context, wallet string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet = strings.ToLower(wallet)
	for _, u := range m.users {
		if u.WalletAddress != nil && *u.WalletAddress == wallet {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemoryRepository) FindByIdentifier(ctx context.Context, identifier string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.find(identifier)
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryRepository) SetRating(ctx context.Context, identifier string, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.find(identifier); ok {
		u.Rating = rating
		u.UpdatedAt = time.Now().UTC()
		m.users[u.ID] = u
	}
	return nil
}

func (m *MemoryRepository) IncrementCompleted(ctx context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.find(identifier); ok {
		u.CompletedJobs++
		u.UpdatedAt = time.Now().UTC()
		m.users[u.ID] = u
	}
	return nil
}

func (m *MemoryRepository) find(identifier string) (User, bool) {
	identifier = strings.ToLower(identifier)
	for _, u := range m.users {
		if u.Email == identifier {
			return u, true
		}
		if u.WalletAddress != nil && *u.WalletAddress == identifier {
			return u, true
		}
		if u.Username != nil && *u.Username == identifier {
			return u, true
		}
	}
	return User{}, false
}
