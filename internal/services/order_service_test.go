package services_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	"foodstore/internal/services"
	apperrors "foodstore/pkg/errors"
	"foodstore/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderIDPattern = regexp.MustCompile(`^ORD-\d+-[0-9a-z]{9}$`)

type recordingPublisher struct {
	mu     sync.Mutex
	events []services.OrderCreatedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if eventType == services.EventOrderCreated {
		p.events = append(p.events, payload.(services.OrderCreatedEvent))
	}
	return nil
}

func fillCart(t *testing.T, cart *services.CartService, userID string, items ...services.AddItemInput) {
	t.Helper()
	for _, item := range items {
		_, err := cart.AddItem(context.Background(), userID, item)
		require.NoError(t, err)
	}
}

func TestOrderService_Checkout(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	publisher := &recordingPublisher{}
	orders := services.NewOrderService(repo, services.WithEventPublisher(publisher))
	user := seedUser(t, repo, "alice", models.RoleUser)
	ctx := context.Background()

	pizza := services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"}
	soda := services.AddItemInput{ProductID: "p2", Name: "Soda", Price: 3, Image: "soda.jpg"}
	fillCart(t, cart, user.ID, pizza, pizza, soda)

	order, err := orders.Checkout(ctx, user.ID, services.CheckoutInput{PaymentMethod: models.PaymentCash})
	require.NoError(t, err)

	assert.Regexp(t, orderIDPattern, order.OrderID)
	assert.Equal(t, 13.0, order.Total)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.Equal(t, models.PaymentCash, order.PaymentMethod)
	assert.Len(t, order.Items, 2)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Cart)
	require.Len(t, stored.OrderHistory, 1)
	assert.Equal(t, order.OrderID, stored.OrderHistory[0].OrderID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, order.OrderID, publisher.events[0].OrderID)
	assert.Equal(t, 2, publisher.events[0].ItemCount)
}

func TestOrderService_CheckoutRejections(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	orders := services.NewOrderService(repo)
	user := seedUser(t, repo, "bob", models.RoleUser)
	ctx := context.Background()

	_, err := orders.Checkout(ctx, user.ID, services.CheckoutInput{PaymentMethod: models.PaymentCash})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmptyCart))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.OrderHistory)

	fillCart(t, cart, user.ID, services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"})
	for _, method := range []models.PaymentMethod{"", "card", models.PaymentRazorpay} {
		_, err = orders.Checkout(ctx, user.ID, services.CheckoutInput{PaymentMethod: method})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "method %q", method)
	}

	stored, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Cart, 1)
}

func TestOrderService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	orders := services.NewOrderService(repo, services.WithEventPublisher(&recordingPublisher{err: errors.New("broker down")}))
	user := seedUser(t, repo, "carol", models.RoleUser)

	fillCart(t, cart, user.ID, services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"})
	_, err := orders.Checkout(context.Background(), user.ID, services.CheckoutInput{PaymentMethod: models.PaymentUPI})
	assert.NoError(t, err)
}

func TestOrderService_ConcurrentCheckoutCommitsOnce(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	orders := services.NewOrderService(repo)
	user := seedUser(t, repo, "dave", models.RoleUser)
	fillCart(t, cart, user.ID, services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"})

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = orders.Checkout(context.Background(), user.ID, services.CheckoutInput{PaymentMethod: models.PaymentCash})
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, err := range results {
		if err == nil {
			committed++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.CodeEmptyCart), "unexpected error %v", err)
	}
	assert.Equal(t, 1, committed)

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.OrderHistory, 1)
}

func TestOrderService_ListMyOrders(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	orders := services.NewOrderService(repo, services.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	user := seedUser(t, repo, "erin", models.RoleUser)
	ctx := context.Background()

	var placed []string
	for i := 0; i < 3; i++ {
		fillCart(t, cart, user.ID, services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"})
		order, err := orders.Checkout(ctx, user.ID, services.CheckoutInput{PaymentMethod: models.PaymentCash})
		require.NoError(t, err)
		placed = append(placed, order.OrderID)
	}

	page, err := orders.ListMyOrders(ctx, user.ID, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, placed[2], page.Orders[0].OrderID)
	assert.Equal(t, placed[1], page.Orders[1].OrderID)
	assert.Equal(t, models.Pagination{CurrentPage: 1, TotalPages: 2, TotalOrders: 3, HasNextPage: true, HasPrevPage: false, Limit: 2}, page.Pagination)

	page, err = orders.ListMyOrders(ctx, user.ID, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, placed[0], page.Orders[0].OrderID)
	assert.False(t, page.Pagination.HasNextPage)
	assert.True(t, page.Pagination.HasPrevPage)
}

func TestOrderService_ListAllOrders(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	cart := services.NewCartService(repo)
	orders := services.NewOrderService(repo)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice", models.RoleUser)
	bob := seedUser(t, repo, "bob", models.RoleUser)
	admin := seedUser(t, repo, "admin", models.RoleAdmin)

	fillCart(t, cart, alice.ID, services.AddItemInput{ProductID: "p1", Name: "Pizza", Price: 5, Image: "pizza.jpg"})
	_, err := orders.Checkout(ctx, alice.ID, services.CheckoutInput{PaymentMethod: models.PaymentCash})
	require.NoError(t, err)
	fillCart(t, cart, bob.ID, services.AddItemInput{ProductID: "p2", Name: "Soda", Price: 2.25, Image: "soda.jpg"})
	_, err = orders.Checkout(ctx, bob.ID, services.CheckoutInput{PaymentMethod: models.PaymentUPI})
	require.NoError(t, err)

	_, err = orders.ListAllOrders(ctx, services.Identity{UserID: alice.ID, Role: models.RoleUser}, pagination.Params{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	page, err := orders.ListAllOrders(ctx, services.Identity{UserID: admin.ID, Role: models.RoleAdmin}, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)
	assert.Equal(t, 2, page.Pagination.TotalOrders)
	assert.Equal(t, 7.25, page.TotalRevenue)
	assert.NotEmpty(t, page.Orders[0].CustomerInfo.Email)
}

func TestKeyedMutex(t *testing.T) {
	locker := services.NewKeyedMutex()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "a")
	require.NoError(t, err)

	other, err := locker.Lock(ctx, "b")
	require.NoError(t, err)
	other()

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	again, err := locker.Lock(ctx, "a")
	require.NoError(t, err)
	again()
}

func TestNewOrderIDSuffixUsesFullAlphabet(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	seen := make([]map[byte]bool, 9)
	for i := range seen {
		seen[i] = map[byte]bool{}
	}

	for n := 0; n < 3000; n++ {
		id, err := services.NewOrderID(now)
		require.NoError(t, err)
		require.Regexp(t, orderIDPattern, id)
		suffix := id[len(id)-9:]
		for i := 0; i < 9; i++ {
			seen[i][suffix[i]] = true
		}
	}

	for i, chars := range seen {
		assert.Greater(t, len(chars), 30, "position %d", i)
	}
}
