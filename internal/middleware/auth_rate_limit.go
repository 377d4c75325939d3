package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "foodstore/pkg/errors"
	"foodstore/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitStore is a shared fixed-window counter, e.g. redis.
type RateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy defines the throttling parameters for an auth endpoint.
type AuthRateLimitPolicy struct {
	Name   string
	Window time.Duration
	// Limit applies separately to each client IP and to each submitted email.
	Limit int64
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

func (p AuthRateLimitPolicy) normalizedName() string {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		return "auth"
	}
	return name
}

// AuthRateLimit throttles auth attempts per IP and per email hash using store. Without a store
// it falls back to fiber's in-process limiter keyed by IP.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimitStore, log *logger.Logger) fiber.Handler {
	if !policy.enabled() {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if store == nil {
		return limiter.New(limiter.Config{
			Max:        int(policy.Limit),
			Expiration: policy.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				return policy.normalizedName() + ":" + c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return apperrors.New(apperrors.CodeRateLimit, "rate limit exceeded")
			},
		})
	}

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		scopes := []string{fmt.Sprintf("ip:%s:%s", policy.normalizedName(), c.IP())}
		if email := normalizeEmail(extractEmail(c.Body())); email != "" {
			scopes = append(scopes, fmt.Sprintf("email:%s:%s", policy.normalizedName(), hashValue(email)))
		}

		for _, scope := range scopes {
			allowed, count, err := store.FixedWindowAllow(ctx, scope, policy.Limit, policy.Window)
			if err != nil {
				// Fail open.
				if log != nil {
					log.Warn(ctx, "auth.rate_limit.store_error", err)
				}
				continue
			}
			if !allowed {
				if log != nil {
					logCtx := log.WithFields(ctx, map[string]any{
						"scope":          scope,
						"attempts":       count,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
					})
					log.Warn(logCtx, "auth.rate_limit.blocked", nil)
				}
				return apperrors.New(apperrors.CodeRateLimit, "rate limit exceeded")
			}
		}
		return c.Next()
	}
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
