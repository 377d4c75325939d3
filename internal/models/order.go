package models

import "time"

// CartLineItem is one product entry in a cart or order. Price is the unit price captured when
// the item was added.
type CartLineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentUPI      PaymentMethod = "upi"
	PaymentRazorpay PaymentMethod = "razorpay"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is an immutable snapshot of a checked-out cart.
type Order struct {
	OrderID         string         `json:"orderId"`
	Items           []CartLineItem `json:"items"`
	Total           float64        `json:"total"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod"`
	PaymentID       string         `json:"paymentId,omitempty"`
	RazorpayOrderID string         `json:"razorpayOrderId,omitempty"`
	Status          OrderStatus    `json:"status"`
	OrderDate       time.Time      `json:"orderDate"`
}

func (o Order) Clone() Order {
	o.Items = CloneItems(o.Items)
	return o
}

// CloneItems copies line items so the result shares no backing array with items.
func CloneItems(items []CartLineItem) []CartLineItem {
	if items == nil {
		return nil
	}
	out := make([]CartLineItem, len(items))
	copy(out, items)
	return out
}

// CustomerInfo identifies the owner of an order in the admin report.
type CustomerInfo struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CustomerOrder struct {
	Order
	CustomerInfo CustomerInfo `json:"customerInfo"`
}

// Pagination is the page metadata returned with order listings.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalOrders int  `json:"totalOrders"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Limit       int  `json:"limit"`
}

type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

type AdminOrderPage struct {
	Orders       []CustomerOrder `json:"orders"`
	Pagination   Pagination      `json:"pagination"`
	TotalRevenue float64         `json:"totalRevenue"`
}
