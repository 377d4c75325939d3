package handlers

import (
	"foodstore/internal/middleware"
	"foodstore/internal/models"
	"foodstore/internal/services"
	"foodstore/pkg/pagination"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles checkout and order history requests.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes, which live under the cart prefix.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	orderRoutes := router.Group("/cart")
	orderRoutes.Post("/order", guards.Session, h.HandlePlaceOrder)
	orderRoutes.Get("/orders", guards.Session, h.HandleGetMyOrders)
	orderRoutes.Get("/admin/orders", guards.Session, guards.Admin, h.HandleGetAllOrders)
}

type placeOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// HandlePlaceOrder checks out the cart with a counter payment method.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req placeOrderRequest
	if err := parseBody(c, h.validate, &req, "Invalid payment method"); err != nil {
		return err
	}

	order, err := h.service.Checkout(c.UserContext(), userID, services.CheckoutInput{
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

// HandleGetMyOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListMyOrders(c.UserContext(), userID, pagination.Parse(c.Query("page"), c.Query("limit")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"orders":     page.Orders,
		"pagination": page.Pagination,
	})
}

// HandleGetAllOrders lists every customer's orders for admins.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)
	page, err := h.service.ListAllOrders(c.UserContext(), identity, pagination.Parse(c.Query("page"), c.Query("limit")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"orders":       page.Orders,
		"pagination":   page.Pagination,
		"totalRevenue": page.TotalRevenue,
	})
}
