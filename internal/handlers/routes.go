package handlers

import "github.com/gofiber/fiber/v2"

// Set bundles the route handlers mounted under /api.
type Set struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Payments *PaymentHandler
}

// RegisterRoutes mounts every handler on router.
func (s Set) RegisterRoutes(router fiber.Router, guards Guards) {
	s.Auth.RegisterRoutes(router, guards)
	s.Products.RegisterRoutes(router, guards)
	s.Cart.RegisterRoutes(router, guards)
	s.Orders.RegisterRoutes(router, guards)
	s.Payments.RegisterRoutes(router, guards)
}
