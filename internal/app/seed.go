package app

import (
	"context"
	"fmt"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	"foodstore/pkg/logger"
)

var defaultMenu = []models.Product{
	{Name: "Margherita Pizza", Price: 12.99, Image: "https://images.unsplash.com/photo-1574071318508-1cdbab80d002"},
	{Name: "Classic Burger", Price: 9.49, Image: "https://images.unsplash.com/photo-1568901346375-23c9450c58cd"},
	{Name: "Caesar Salad", Price: 7.25, Image: "https://images.unsplash.com/photo-1550304943-4f24f54ddde9"},
	{Name: "Pad Thai", Price: 11.5, Image: "https://images.unsplash.com/photo-1559314809-0d155014e29e"},
	{Name: "Chocolate Brownie", Price: 4.75, Image: "https://images.unsplash.com/photo-1606313564200-e75d5e30476c"},
}

// SeedProducts fills an empty catalog with the default menu. It returns how many were created.
func SeedProducts(ctx context.Context, repo repositories.ProductRepository, log *logger.Logger) (int, error) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("check catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, item := range defaultMenu {
		product := item
		if err := repo.Create(ctx, &product); err != nil {
			log.Warn(log.WithField(ctx, "product", product.Name), "failed to seed product", err)
			continue
		}
		created++
	}
	log.Info(log.WithField(ctx, "count", created), "seeded product catalog")
	return created, nil
}
