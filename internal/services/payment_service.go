package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodstore/internal/models"
	apperrors "foodstore/pkg/errors"
	"foodstore/pkg/razorpay"

	"github.com/shopspring/decimal"
)

const (
	// USDToINRRate converts cart totals (USD) to the gateway currency.
	USDToINRRate = 83
	// ReceiptPrefix starts every gateway receipt id.
	ReceiptPrefix   = "FOOD_STORE_"
	DefaultCurrency = "INR"
)

// PaymentGateway is the subset of the gateway client the payment flow uses.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (map[string]any, error)
	KeyID() string
	KeySecret() string
}

// PaymentIntent is returned to the browser to open the gateway checkout.
type PaymentIntent struct {
	Order razorpay.Order `json:"order"`
	KeyID string         `json:"key_id"`
}

// VerifyInput is the gateway callback payload.
type VerifyInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// PaymentService creates gateway orders and verifies payment callbacks.
type PaymentService struct {
	gateway PaymentGateway
	orders  *OrderService
	now     func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(gateway PaymentGateway, orders *OrderService) *PaymentService {
	return &PaymentService{gateway: gateway, orders: orders, now: time.Now}
}

// CreatePaymentIntent registers a gateway order for amountUSD converted to paise.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID string, amountUSD float64, currency string) (PaymentIntent, error) {
	if amountUSD <= 0 {
		return PaymentIntent{}, apperrors.Validation("Invalid amount")
	}
	if s.gateway == nil {
		return PaymentIntent{}, apperrors.New(apperrors.CodePaymentGateway, "Online payments are not configured")
	}
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}

	usd := decimal.NewFromFloat(amountUSD)
	inr := usd.Mul(decimal.NewFromInt(USDToINRRate))
	paise := inr.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   paise,
		Currency: currency,
		Receipt:  fmt.Sprintf("%s%d", ReceiptPrefix, s.now().UnixMilli()),
		Notes: map[string]string{
			"store_name":  "Food Store",
			"payment_for": "Food Order",
			"user_id":     userID,
			"usd_amount":  usd.StringFixed(2),
			"inr_amount":  inr.StringFixed(2),
		},
	})
	if err != nil {
		return PaymentIntent{}, apperrors.Wrap(apperrors.CodePaymentGateway, err, "Failed to create payment order")
	}
	return PaymentIntent{Order: *order, KeyID: s.gateway.KeyID()}, nil
}

// VerifyAndCheckout checks the callback signature and, when it matches, places the order.
func (s *PaymentService) VerifyAndCheckout(ctx context.Context, userID string, in VerifyInput) (models.Order, error) {
	if in.GatewayOrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return models.Order{}, apperrors.Validation("Missing payment verification details")
	}
	if s.gateway == nil {
		return models.Order{}, apperrors.New(apperrors.CodePaymentGateway, "Online payments are not configured")
	}
	if !razorpay.VerifySignature(s.gateway.KeySecret(), in.GatewayOrderID, in.PaymentID, in.Signature) {
		return models.Order{}, apperrors.New(apperrors.CodeSignatureMismatch, "Payment verification failed")
	}
	return s.orders.CheckoutGateway(ctx, userID, GatewayPayment{
		PaymentID:      in.PaymentID,
		GatewayOrderID: in.GatewayOrderID,
	})
}

// PaymentDetails fetches a payment from the gateway.
func (s *PaymentService) PaymentDetails(ctx context.Context, paymentID string) (map[string]any, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, apperrors.Validation("Payment ID is required")
	}
	if s.gateway == nil {
		return nil, apperrors.New(apperrors.CodePaymentGateway, "Online payments are not configured")
	}
	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePaymentGateway, err, "Failed to fetch payment details")
	}
	return payment, nil
}
