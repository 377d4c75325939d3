package app

import (
	"context"
	"encoding/json"
	"fmt"

	"foodstore/internal/config"
	"foodstore/internal/repositories"
	"foodstore/internal/services"
	"foodstore/pkg/logger"
	"foodstore/pkg/rabbitmq"
	"foodstore/pkg/razorpay"
	redisclient "foodstore/pkg/redis"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/streadway/amqp"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Runtime owns the HTTP app and every connection it depends on.
type Runtime struct {
	App   *fiber.App
	DB    *gorm.DB
	Redis *redisclient.Client
	MQ    *rabbitmq.Client
	log   *logger.Logger
}

// Bootstrap opens the database and optional integrations, then builds the app.
func Bootstrap(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Runtime, error) {
	rt := &Runtime{log: log}

	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	rt.DB = db

	deps := Dependencies{DB: db, Logger: log}

	if cfg.RedisURL != "" {
		client, err := redisclient.New(ctx, cfg.RedisURL)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		rt.Redis = client
		deps.Redis = client
	}

	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			// Order events are optional.
			log.Warn(ctx, "rabbitmq unavailable, order events disabled", err)
		} else {
			rt.MQ = client
			deps.Publisher = client
		}
	}

	if cfg.PaymentsEnabled() {
		gateway, err := razorpay.NewClient(razorpay.Config{
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
			BaseURL:   cfg.RazorpayBaseURL,
		})
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("razorpay: %w", err)
		}
		deps.Gateway = gateway
	} else {
		log.Warn(ctx, "razorpay credentials missing, online payments disabled", nil)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Registry = registry

	if cfg.SeedProducts {
		if _, err := SeedProducts(ctx, repositories.NewGORMProductRepository(db), log); err != nil {
			log.Warn(ctx, "product seeding failed", err)
		}
	}

	app, err := Build(cfg, deps)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.App = app
	return rt, nil
}

// ConsumeEvents logs order events until ctx is done. It returns immediately without a broker.
func (rt *Runtime) ConsumeEvents(ctx context.Context) error {
	if rt.MQ == nil {
		return nil
	}
	rt.log.Info(ctx, "consuming order events")
	return rt.MQ.Consume(ctx, func(msg amqp.Delivery) error {
		return handleOrderEvent(ctx, rt.log, msg)
	})
}

func handleOrderEvent(ctx context.Context, log *logger.Logger, msg amqp.Delivery) error {
	if msg.Type != services.EventOrderCreated {
		log.Debug(log.WithField(ctx, "type", msg.Type), "ignoring event")
		return nil
	}
	var event services.OrderCreatedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Type, err)
	}
	logCtx := log.WithFields(ctx, map[string]any{
		"order_id":       event.OrderID,
		"user_id":        event.UserID,
		"total":          event.Total,
		"payment_method": event.PaymentMethod,
		"items":          event.ItemCount,
	})
	log.Info(logCtx, "order created")
	return nil
}

// Close releases every connection, collecting errors.
func (rt *Runtime) Close() error {
	var err error
	if rt.MQ != nil {
		err = multierr.Append(err, rt.MQ.Close())
	}
	if rt.Redis != nil {
		err = multierr.Append(err, rt.Redis.Close())
	}
	if rt.DB != nil {
		if sqlDB, dbErr := rt.DB.DB(); dbErr == nil {
			err = multierr.Append(err, sqlDB.Close())
		} else {
			err = multierr.Append(err, dbErr)
		}
	}
	return err
}
