package services

import (
	"context"
	"errors"
	"strings"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	apperrors "foodstore/pkg/errors"

	"github.com/google/uuid"
)

// ProductInput carries create fields.
type ProductInput struct {
	Name  string
	Price float64
	Image string
}

// ProductPatch carries the fields to change; nil means keep.
type ProductPatch struct {
	Name  *string
	Price *float64
	Image *string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load products")
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("Product not found")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:  strings.TrimSpace(in.Name),
		Price: in.Price,
		Image: strings.TrimSpace(in.Image),
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperrors.Internal(err, "failed to create product")
	}
	return product, nil
}

// UpdateProduct applies the provided fields to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Image != nil {
		product.Image = strings.TrimSpace(*patch.Image)
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, productError(err)
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound("Product not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return productError(err)
	}
	return nil
}

func validateProduct(p *models.Product) error {
	if p.Name == "" || p.Price <= 0 || p.Image == "" {
		return apperrors.Validation("Please provide all fields")
	}
	return nil
}

func productError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("Product not found")
	}
	return apperrors.Internal(err, "product store failure")
}
