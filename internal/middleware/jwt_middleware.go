package middleware

import (
	"context"
	"strings"

	"foodstore/internal/models"
	"foodstore/internal/services"
	apperrors "foodstore/pkg/errors"
	"foodstore/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "token"

const identityKey = "identity"

// SessionVerifier resolves a token to the calling identity.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (services.Identity, error)
}

// AuthRequired resolves the session from the cookie, falling back to a Bearer header.
func AuthRequired(verifier SessionVerifier, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			tokenString = bearerToken(c.Get(fiber.HeaderAuthorization))
		}

		identity, err := verifier.VerifySession(c.UserContext(), tokenString)
		if err != nil {
			return err
		}

		c.Locals(identityKey, identity)
		if log != nil {
			c.SetUserContext(log.WithUserID(c.UserContext(), identity.UserID))
		}
		return c.Next()
	}
}

// RoleAuthorizer decides whether an identity holds a role.
type RoleAuthorizer interface {
	RequireRole(identity services.Identity, role models.Role) error
}

// AdminRequired must run after AuthRequired.
func AdminRequired(authorizer RoleAuthorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return apperrors.New(apperrors.CodeUnauthenticated, "Access denied. No token provided.")
		}
		if err := authorizer.RequireRole(identity, models.RoleAdmin); err != nil {
			return err
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok
}

func bearerToken(header string) string {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
