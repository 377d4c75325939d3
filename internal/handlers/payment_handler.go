package handlers

import (
	"foodstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles the online payment flow.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	paymentRoutes := router.Group("/payment")
	paymentRoutes.Post("/create-order", guards.Session, h.HandleCreateOrder)
	paymentRoutes.Post("/verify", guards.Session, h.HandleVerify)
	paymentRoutes.Get("/details/:payment_id", guards.Session, h.HandleDetails)
}

type createPaymentRequest struct {
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

func (h *PaymentHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req createPaymentRequest
	if err := parseBody(c, h.validate, &req, "Invalid amount"); err != nil {
		return err
	}

	intent, err := h.service.CreatePaymentIntent(c.UserContext(), userID, req.Amount, req.Currency)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"order":   intent.Order,
		"key_id":  intent.KeyID,
	})
}

func (h *PaymentHandler) HandleVerify(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req verifyPaymentRequest
	if err := parseBody(c, h.validate, &req, "Missing payment verification details"); err != nil {
		return err
	}

	order, err := h.service.VerifyAndCheckout(c.UserContext(), userID, services.VerifyInput{
		GatewayOrderID: req.OrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment verified successfully",
		"order":   order,
	})
}

func (h *PaymentHandler) HandleDetails(c *fiber.Ctx) error {
	payment, err := h.service.PaymentDetails(c.UserContext(), c.Params("payment_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "payment": payment})
}
