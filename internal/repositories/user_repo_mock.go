package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"foodstore/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// Stored users are deep-copied on the way in and out.
type MemoryUserRepository struct {
	users map[string]*models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]*models.User),
	}
}

// Create adds a user; username and email must be unique.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("create user %s: %w", user.Username, ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Cart == nil {
		user.Cart = []models.CartLineItem{}
	}
	if user.OrderHistory == nil {
		user.OrderHistory = []models.Order{}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Version = 1
	r.users[user.ID] = user.Clone()
	return nil
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(username, func(u *models.User) bool { return u.Username == username })
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(email, func(u *models.User) bool { return u.Email == email })
}

// GetByID returns a user by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return user.Clone(), nil
}

func (r *MemoryUserRepository) find(key string, match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if match(user) {
			return user.Clone(), nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", key, ErrNotFound)
}

// Save replaces the stored document when the versions match.
func (r *MemoryUserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	if existing.Version != user.Version {
		return fmt.Errorf("save user %s at version %d: %w", user.ID, user.Version, ErrStaleUser)
	}
	user.Version++
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user.Clone()
	return nil
}

// ListWithOrders returns copies of every user ordered by creation time.
func (r *MemoryUserRepository) ListWithOrders(context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user.Clone())
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}
