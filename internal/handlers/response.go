package handlers

import (
	"errors"

	"foodstore/internal/middleware"
	apperrors "foodstore/pkg/errors"
	"foodstore/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Guards are the route middlewares the handlers attach.
type Guards struct {
	Session     fiber.Handler
	Admin       fiber.Handler
	SignupLimit fiber.Handler
	LoginLimit  fiber.Handler
}

func (g Guards) withDefaults() Guards {
	pass := func(c *fiber.Ctx) error { return c.Next() }
	if g.SignupLimit == nil {
		g.SignupLimit = pass
	}
	if g.LoginLimit == nil {
		g.LoginLimit = pass
	}
	return g
}

// ErrorHandler renders every error as {success:false, message}. Internal errors are redacted.
func ErrorHandler(log *logger.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		ctx := c.UserContext()

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		typed := apperrors.As(err)
		if typed == nil {
			typed = apperrors.Internal(err, "unhandled error")
		}
		meta := apperrors.MetadataFor(typed.Code())

		if meta.HTTPStatus >= fiber.StatusInternalServerError {
			if development {
				log.Error(log.WithField(ctx, "path", c.Path()), "request failed", err)
			} else {
				log.Error(ctx, "request failed", errors.New(typed.Message()))
			}
		}

		return c.Status(meta.HTTPStatus).JSON(fiber.Map{
			"success": false,
			"message": typed.PublicMessage(),
		})
	}
}

// parseBody decodes and validates a JSON body; any failure becomes a validation error with msg.
func parseBody(c *fiber.Ctx, validate *validator.Validate, out any, msg string) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, msg)
	}
	if err := validate.Struct(out); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, msg)
	}
	return nil
}

func currentUserID(c *fiber.Ctx) (string, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "Access denied. No token provided.")
	}
	return identity.UserID, nil
}
