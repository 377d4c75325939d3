package repositories

import (
	"context"
	"errors"

	"foodstore/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("record already exists")
	// ErrStaleUser is returned by Save when the stored version moved since the user was loaded.
	ErrStaleUser = errors.New("user was modified concurrently")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Save writes the whole user document if user.Version still matches the stored row,
	// then bumps user.Version.
	Save(ctx context.Context, user *models.User) error
	// ListWithOrders returns every user with their order history.
	ListWithOrders(ctx context.Context) ([]models.User, error)
}
