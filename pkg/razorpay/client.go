package razorpay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/razorpay/razorpay-go"
)

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "https://api.razorpay.com"

// Config holds gateway credentials.
type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client wraps the Razorpay SDK for the order and payment calls the store makes.
type Client struct {
	api       *sdk.Client
	baseURL   string
	keyID     string
	keySecret string
}

// OrderRequest is the body of POST /v1/orders. Amount is in the smallest currency unit.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the subset of the gateway order returned to clients.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status,omitempty"`
}

// NewClient builds a client; the key id and secret are required.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.KeyID) == "" || strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, errors.New("razorpay key id and secret are required")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	api := sdk.NewClient(cfg.KeyID, cfg.KeySecret)
	// Every resource shares one request object.
	api.Order.Request.BaseURL = base
	api.Order.Request.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:       api,
		baseURL:   base,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
	}, nil
}

// KeyID is the public key the browser checkout needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// KeySecret signs payment callbacks.
func (c *Client) KeySecret() string {
	return c.keySecret
}

// CreateOrder registers an order with the gateway.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	return orderFromMap(body), nil
}

// FetchPayment returns the raw payment entity.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (map[string]any, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, errors.New("payment id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payment, err := c.api.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch payment %s: %w", paymentID, err)
	}
	return payment, nil
}

func orderFromMap(body map[string]interface{}) *Order {
	order := &Order{}
	order.ID, _ = body["id"].(string)
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	return order
}
