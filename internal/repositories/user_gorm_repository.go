package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user at version 1.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Cart == nil {
		user.Cart = []models.CartLineItem{}
	}
	if user.OrderHistory == nil {
		user.OrderHistory = []models.Order{}
	}
	user.Version = 1
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail retrieves a user by their email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMUserRepository) first(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", arg, err)
	}
	return &user, nil
}

// Save performs a compare-and-swap on the version column.
func (r *GORMUserRepository) Save(ctx context.Context, user *models.User) error {
	current := user.Version
	next := *user
	next.Version = current + 1
	next.UpdatedAt = time.Now()

	res := r.db.WithContext(ctx).
		Model(&models.User{ID: user.ID}).
		Where("version = ?", current).
		Select("username", "email", "password", "role", "cart", "order_history", "version", "updated_at").
		Updates(&next)
	if res.Error != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("save user %s at version %d: %w", user.ID, current, ErrStaleUser)
	}
	user.Version = next.Version
	user.UpdatedAt = next.UpdatedAt
	return nil
}

// ListWithOrders loads the columns the admin order report needs.
func (r *GORMUserRepository) ListWithOrders(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Select("id", "username", "email", "order_history").
		Order("created_at asc").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
