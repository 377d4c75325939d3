package handlers

import (
	"foodstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the session user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes; all require a session.
func (h *CartHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", guards.Session, h.HandleGetCart)
	cartRoutes.Post("/add", guards.Session, h.HandleAddItem)
	cartRoutes.Put("/update", guards.Session, h.HandleUpdateQuantity)
	cartRoutes.Delete("/remove/:productId", guards.Session, h.HandleRemoveItem)
	cartRoutes.Delete("/clear", guards.Session, h.HandleClearCart)
}

type addItemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}

type updateQuantityRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cart, err := h.service.GetCart(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "cart": cart})
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req addItemRequest
	if err := parseBody(c, h.validate, &req, "Missing required fields"); err != nil {
		return err
	}

	cart, err := h.service.AddItem(c.UserContext(), userID, services.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Image:     req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Item added to cart", "cart": cart})
}

func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req updateQuantityRequest
	if err := parseBody(c, h.validate, &req, "Product ID and quantity are required"); err != nil {
		return err
	}

	cart, err := h.service.SetQuantity(c.UserContext(), userID, req.ProductID, *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Cart updated", "cart": cart})
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cart, err := h.service.RemoveItem(c.UserContext(), userID, c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Item removed from cart", "cart": cart})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cart, err := h.service.Clear(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Cart cleared", "cart": cart})
}
