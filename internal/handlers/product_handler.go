package handlers

import (
	"foodstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Writes are admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", guards.Session, guards.Admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", guards.Session, guards.Admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guards.Session, guards.Admin, h.HandleDeleteProduct)
}

type productRequest struct {
	Name  *string  `json:"name" validate:"omitempty,max=100"`
	Price *float64 `json:"price"`
	Image *string  `json:"image" validate:"omitempty,max=500"`
}

func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": products})
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := parseBody(c, h.validate, &req, "Please provide all fields"); err != nil {
		return err
	}
	in := services.ProductInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Image != nil {
		in.Image = *req.Image
	}

	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := parseBody(c, h.validate, &req, "Invalid product data"); err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), services.ProductPatch{
		Name:  req.Name,
		Price: req.Price,
		Image: req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted successfully"})
}
