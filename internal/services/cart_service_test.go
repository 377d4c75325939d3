package services_test

import (
	"context"
	"testing"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	"foodstore/internal/services"
	apperrors "foodstore/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo repositories.UserRepository, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash", Role: role}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestCartService_AddItemDedupes(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	user := seedUser(t, repo, "alice", models.RoleUser)
	ctx := context.Background()

	pizza := services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"}
	for i := 0; i < 3; i++ {
		_, err := cart.AddItem(ctx, user.ID, pizza)
		require.NoError(t, err)
	}
	items, err := cart.AddItem(ctx, user.ID, services.AddItemInput{ProductID: "p2", Name: "Soda", Price: 1.5, Image: "soda.jpg"})
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)

	stored, err := cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, items, stored)

	_, err = cart.AddItem(ctx, user.ID, services.AddItemInput{ProductID: "p3"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestCartService_AddItemRequiresEveryField(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	user := seedUser(t, repo, "erin", models.RoleUser)
	ctx := context.Background()

	cases := map[string]services.AddItemInput{
		"no product id": {Name: "Pizza", Price: 5, Image: "pizza.jpg"},
		"no name":       {ProductID: "p1", Price: 5, Image: "pizza.jpg"},
		"no price":      {ProductID: "p1", Name: "Pizza", Image: "pizza.jpg"},
		"no image":      {ProductID: "p1", Name: "Pizza", Price: 5},
		"blank image":   {ProductID: "p1", Name: "Pizza", Price: 5, Image: "  "},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := cart.AddItem(ctx, user.ID, in)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
			assert.Equal(t, "Missing required fields", apperrors.As(err).PublicMessage())
		})
	}

	stored, err := cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCartService_SetQuantity(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	user := seedUser(t, repo, "bob", models.RoleUser)
	ctx := context.Background()

	_, err := cart.AddItem(ctx, user.ID, services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"})
	require.NoError(t, err)

	items, err := cart.SetQuantity(ctx, user.ID, "p1", 4)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	items, err = cart.SetQuantity(ctx, user.ID, "unknown", 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = cart.SetQuantity(ctx, user.ID, "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	_, err = cart.SetQuantity(ctx, user.ID, "p1", -1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = cart.SetQuantity(ctx, user.ID, "", 1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestCartService_RemoveAndClear(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	user := seedUser(t, repo, "carol", models.RoleUser)
	ctx := context.Background()

	_, err := cart.AddItem(ctx, user.ID, services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"})
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, user.ID, services.AddItemInput{ProductID: "p2", Name: "Soda", Price: 1, Image: "soda.jpg"})
	require.NoError(t, err)

	items, err := cart.RemoveItem(ctx, user.ID, "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)

	items, err = cart.RemoveItem(ctx, user.ID, "p1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = cart.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = cart.GetCart(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCartTotal(t *testing.T) {
	items := []models.CartLineItem{
		{ProductID: "a", Price: 0.1, Quantity: 3},
		{ProductID: "b", Price: 0.2, Quantity: 1},
	}
	assert.Equal(t, 0.5, services.CartTotal(items))
	assert.Equal(t, 0.0, services.CartTotal(nil))
}
