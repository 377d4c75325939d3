package services

import (
	"context"
	"errors"
	"strings"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	apperrors "foodstore/pkg/errors"
)

// AddItemInput is the product snapshot added to a cart.
type AddItemInput struct {
	ProductID string
	Name      string
	Price     float64
	Image     string
}

// CartService manages the cart embedded in each user document.
type CartService struct {
	userRepo repositories.UserRepository
}

// NewCartService creates a new CartService.
func NewCartService(userRepo repositories.UserRepository) *CartService {
	return &CartService{userRepo: userRepo}
}

// GetCart returns the user's cart, never nil.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartLineItem, error) {
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	return nonNilCart(user.Cart), nil
}

// AddItem increments the matching line or appends a new one with quantity 1.
func (s *CartService) AddItem(ctx context.Context, userID string, in AddItemInput) ([]models.CartLineItem, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	if in.ProductID == "" || in.Name == "" || in.Price <= 0 || in.Image == "" {
		return nil, apperrors.Validation("Missing required fields")
	}
	return s.mutate(ctx, userID, func(cart []models.CartLineItem) []models.CartLineItem {
		return addOrIncrement(cart, models.CartLineItem{
			ProductID: in.ProductID,
			Name:      in.Name,
			Price:     in.Price,
			Image:     in.Image,
		})
	})
}

// SetQuantity overwrites a line's quantity; 0 removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) ([]models.CartLineItem, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperrors.Validation("Product ID is required")
	}
	if quantity < 0 {
		return nil, apperrors.Validation("Quantity cannot be negative")
	}
	return s.mutate(ctx, userID, func(cart []models.CartLineItem) []models.CartLineItem {
		return setQuantity(cart, productID, quantity)
	})
}

// RemoveItem drops the line for productID if present.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) ([]models.CartLineItem, error) {
	return s.mutate(ctx, userID, func(cart []models.CartLineItem) []models.CartLineItem {
		return removeItem(cart, productID)
	})
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID string) ([]models.CartLineItem, error) {
	return s.mutate(ctx, userID, func([]models.CartLineItem) []models.CartLineItem {
		return []models.CartLineItem{}
	})
}

func (s *CartService) mutate(ctx context.Context, userID string, apply func([]models.CartLineItem) []models.CartLineItem) ([]models.CartLineItem, error) {
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	user.Cart = nonNilCart(apply(user.Cart))
	if err := saveUser(ctx, s.userRepo, user); err != nil {
		return nil, err
	}
	return user.Cart, nil
}

func loadUser(ctx context.Context, repo repositories.UserRepository, userID string) (*models.User, error) {
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err, "failed to load user")
	}
	return user, nil
}

func saveUser(ctx context.Context, repo repositories.UserRepository, user *models.User) error {
	if err := repo.Save(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrStaleUser) {
			return apperrors.Wrap(apperrors.CodeStaleWrite, err, "Your account was updated by another request. Please retry.")
		}
		return apperrors.Internal(err, "failed to save user")
	}
	return nil
}

func nonNilCart(cart []models.CartLineItem) []models.CartLineItem {
	if cart == nil {
		return []models.CartLineItem{}
	}
	return cart
}
