package app

import (
	"context"
	"errors"
	"time"

	"foodstore/internal/config"
	"foodstore/internal/handlers"
	"foodstore/internal/middleware"
	"foodstore/internal/repositories"
	"foodstore/internal/services"
	"foodstore/pkg/logger"
	"foodstore/pkg/metrics"
	redisclient "foodstore/pkg/redis"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies are the external resources the HTTP app is built on. Only DB is required.
type Dependencies struct {
	DB        *gorm.DB
	Gateway   services.PaymentGateway
	Publisher services.EventPublisher
	Redis     *redisclient.Client
	Registry  *prometheus.Registry
	Logger    *logger.Logger
}

// Build wires repositories, services and handlers into a Fiber app.
func Build(cfg *config.Config, deps Dependencies) (*fiber.App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	storeMetrics := metrics.NewStoreMetrics(registry)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	productRepo := repositories.NewGORMProductRepository(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret,
		services.WithAdminSignup(cfg.AllowAdminSignup),
		services.WithAuthMetrics(storeMetrics),
	)
	orderOpts := []services.OrderOption{
		services.WithOrderMetrics(storeMetrics),
		services.WithOrderLogger(log),
		services.WithEventPublisher(deps.Publisher),
	}
	var rateStore middleware.RateLimitStore
	if deps.Redis != nil {
		orderOpts = append(orderOpts, services.WithLocker(deps.Redis))
		rateStore = deps.Redis
	}
	orderService := services.NewOrderService(userRepo, orderOpts...)
	cartService := services.NewCartService(userRepo)
	paymentService := services.NewPaymentService(deps.Gateway, orderService)
	productService := services.NewProductService(productRepo)

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:      "foodstore",
		ErrorHandler: handlers.ErrorHandler(log, cfg.IsDevelopment()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
			ctx = log.WithRequestID(ctx, id)
		}
		c.SetUserContext(ctx)
		return c.Next()
	})
	app.Use(fiberlogger.New())
	app.Use(corsMiddleware(cfg.FrontendURL))

	app.Get("/health", healthHandler(deps.DB))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	guards := handlers.Guards{
		Session: middleware.AuthRequired(authService, log),
		Admin:   middleware.AdminRequired(authService),
		SignupLimit: middleware.AuthRateLimit(middleware.AuthRateLimitPolicy{
			Name: "signup", Window: cfg.AuthRateLimitWindow, Limit: cfg.AuthRateLimitMax,
		}, rateStore, log),
		LoginLimit: middleware.AuthRateLimit(middleware.AuthRateLimitPolicy{
			Name: "login", Window: cfg.AuthRateLimitWindow, Limit: cfg.AuthRateLimitMax,
		}, rateStore, log),
	}

	api := app.Group("/api")
	handlers.Set{
		Auth:     handlers.NewAuthHandler(authService),
		Products: handlers.NewProductHandler(productService),
		Cart:     handlers.NewCartHandler(cartService),
		Orders:   handlers.NewOrderHandler(orderService),
		Payments: handlers.NewPaymentHandler(paymentService),
	}.RegisterRoutes(api, guards)

	return app, nil
}

func corsMiddleware(frontendURL string) fiber.Handler {
	if frontendURL == "" || frontendURL == "*" {
		return cors.New()
	}
	return cors.New(cors.Config{
		AllowOrigins:     frontendURL,
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	})
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "connected"
		if sqlDB, err := db.DB(); err != nil {
			status = "unavailable"
		} else {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				status = "unavailable"
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": status,
		})
	}
}
