package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	apperrors "foodstore/pkg/errors"
	"foodstore/pkg/logger"
	"foodstore/pkg/metrics"
	"foodstore/pkg/pagination"

	"github.com/shopspring/decimal"
)

// EventOrderCreated is the message type published after a checkout commits.
const EventOrderCreated = "order.created"

// EventPublisher delivers domain events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// OrderCreatedEvent is the body of an order.created message.
type OrderCreatedEvent struct {
	OrderID       string               `json:"orderId"`
	UserID        string               `json:"userId"`
	Total         float64              `json:"total"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	ItemCount     int                  `json:"itemCount"`
	OrderDate     time.Time            `json:"orderDate"`
}

// CheckoutInput selects the counter payment method.
type CheckoutInput struct {
	PaymentMethod models.PaymentMethod
}

// GatewayPayment identifies a payment already confirmed by the gateway.
type GatewayPayment struct {
	PaymentID      string
	GatewayOrderID string
}

// OrderService turns carts into orders and reports order history.
type OrderService struct {
	userRepo  repositories.UserRepository
	locker    Locker
	publisher EventPublisher
	metrics   *metrics.StoreMetrics
	log       *logger.Logger
	now       func() time.Time
}

type OrderOption func(*OrderService)

// WithLocker replaces the in-process per-user lock, e.g. with a redis lock.
func WithLocker(l Locker) OrderOption {
	return func(s *OrderService) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithEventPublisher(p EventPublisher) OrderOption {
	return func(s *OrderService) { s.publisher = p }
}

func WithOrderMetrics(m *metrics.StoreMetrics) OrderOption {
	return func(s *OrderService) { s.metrics = m }
}

func WithOrderLogger(l *logger.Logger) OrderOption {
	return func(s *OrderService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService creates a new OrderService.
func NewOrderService(userRepo repositories.UserRepository, opts ...OrderOption) *OrderService {
	s := &OrderService{
		userRepo: userRepo,
		locker:   NewKeyedMutex(),
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout places a counter order (cash or UPI) from the user's current cart.
func (s *OrderService) Checkout(ctx context.Context, userID string, in CheckoutInput) (models.Order, error) {
	if in.PaymentMethod != models.PaymentCash && in.PaymentMethod != models.PaymentUPI {
		s.metrics.CheckoutRejected("invalid_payment_method")
		return models.Order{}, apperrors.Validation("Invalid payment method")
	}
	return s.commit(ctx, userID, models.Order{PaymentMethod: in.PaymentMethod})
}

// CheckoutGateway places an order paid through the online gateway. The payment must already be
// verified by the caller.
func (s *OrderService) CheckoutGateway(ctx context.Context, userID string, payment GatewayPayment) (models.Order, error) {
	return s.commit(ctx, userID, models.Order{
		PaymentMethod:   models.PaymentRazorpay,
		PaymentID:       payment.PaymentID,
		RazorpayOrderID: payment.GatewayOrderID,
	})
}

func (s *OrderService) commit(ctx context.Context, userID string, draft models.Order) (models.Order, error) {
	started := s.now()
	defer func() { s.metrics.ObserveCheckout(s.now().Sub(started)) }()

	unlock, err := s.locker.Lock(ctx, "checkout:"+userID)
	if err != nil {
		s.metrics.CheckoutRejected("lock")
		return models.Order{}, apperrors.Wrap(apperrors.CodeStaleWrite, err, "Another checkout is in progress. Please retry.")
	}
	defer unlock()

	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		s.metrics.CheckoutRejected("user")
		return models.Order{}, err
	}
	if draft.RazorpayOrderID != "" && paidWith(user.OrderHistory, draft.RazorpayOrderID) {
		s.metrics.CheckoutRejected("payment_reused")
		return models.Order{}, apperrors.New(apperrors.CodeConflict, "Payment has already been used for an order")
	}
	if len(user.Cart) == 0 {
		s.metrics.CheckoutRejected("empty_cart")
		return models.Order{}, apperrors.New(apperrors.CodeEmptyCart, "Cart is empty")
	}

	orderID, err := newOrderID(s.now())
	if err != nil {
		return models.Order{}, apperrors.Internal(err, "failed to generate order id")
	}

	order := draft
	order.OrderID = orderID
	order.Items = models.CloneItems(user.Cart)
	order.Total = CartTotal(user.Cart)
	order.Status = models.OrderCompleted
	order.OrderDate = s.now()

	user.OrderHistory = append(user.OrderHistory, order.Clone())
	user.Cart = []models.CartLineItem{}
	if err := saveUser(ctx, s.userRepo, user); err != nil {
		s.metrics.CheckoutRejected("save")
		return models.Order{}, err
	}

	s.metrics.OrderPlaced(string(order.PaymentMethod), order.Total)
	s.publishCreated(ctx, userID, order)
	return order, nil
}

func paidWith(history []models.Order, gatewayOrderID string) bool {
	for _, order := range history {
		if order.RazorpayOrderID == gatewayOrderID {
			return true
		}
	}
	return false
}

func (s *OrderService) publishCreated(ctx context.Context, userID string, order models.Order) {
	if s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		OrderID:       order.OrderID,
		UserID:        userID,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(order.Items),
		OrderDate:     order.OrderDate,
	}
	if err := s.publisher.Publish(ctx, EventOrderCreated, event); err != nil {
		logCtx := s.log.WithFields(ctx, map[string]any{"order_id": order.OrderID, "user_id": userID})
		s.log.Warn(logCtx, "failed to publish order event", err)
	}
}

// ListMyOrders returns the caller's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, params pagination.Params) (models.OrderPage, error) {
	user, err := loadUser(ctx, s.userRepo, userID)
	if err != nil {
		return models.OrderPage{}, err
	}

	orders := make([]models.Order, len(user.OrderHistory))
	copy(orders, user.OrderHistory)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})

	page, meta := pagination.Paginate(orders, params)
	return models.OrderPage{Orders: page, Pagination: toPagination(meta)}, nil
}

// ListAllOrders returns every customer's orders for administrators, newest first, with the
// revenue across all orders.
func (s *OrderService) ListAllOrders(ctx context.Context, identity Identity, params pagination.Params) (models.AdminOrderPage, error) {
	if !identity.IsAdmin() {
		return models.AdminOrderPage{}, apperrors.Forbidden(msgAdminOnly)
	}

	users, err := s.userRepo.ListWithOrders(ctx)
	if err != nil {
		return models.AdminOrderPage{}, apperrors.Internal(err, "failed to load orders")
	}

	var all []models.CustomerOrder
	revenue := decimal.Zero
	for _, user := range users {
		info := models.CustomerInfo{UserID: user.ID, Username: user.Username, Email: user.Email}
		for _, order := range user.OrderHistory {
			all = append(all, models.CustomerOrder{Order: order, CustomerInfo: info})
			revenue = revenue.Add(decimal.NewFromFloat(order.Total))
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].OrderDate.After(all[j].OrderDate)
	})

	page, meta := pagination.Paginate(all, params)
	return models.AdminOrderPage{
		Orders:       page,
		Pagination:   toPagination(meta),
		TotalRevenue: revenue.Round(2).InexactFloat64(),
	}, nil
}

func toPagination(meta pagination.Meta) models.Pagination {
	return models.Pagination{
		CurrentPage: meta.CurrentPage,
		TotalPages:  meta.TotalPages,
		TotalOrders: meta.TotalItems,
		HasNextPage: meta.HasNext,
		HasPrevPage: meta.HasPrev,
		Limit:       meta.Limit,
	}
}

// orderSuffixSpace is 36^9, the number of distinct 9-character base36 suffixes.
var orderSuffixSpace = big.NewInt(101559956668416)

// newOrderID renders ORD-<unix ms>-<9 random base36 chars>.
func newOrderID(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, orderSuffixSpace)
	if err != nil {
		return "", fmt.Errorf("order id suffix: %w", err)
	}
	suffix := strconv.FormatInt(n.Int64(), 36)
	return fmt.Sprintf("ORD-%d-%s%s", now.UnixMilli(), strings.Repeat("0", 9-len(suffix)), suffix), nil
}
