package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"foodstore/internal/models"
	"foodstore/internal/repositories"
	"foodstore/internal/services"
	apperrors "foodstore/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if typed := apperrors.As(err); typed != nil {
				return c.Status(apperrors.MetadataFor(typed.Code()).HTTPStatus).SendString(typed.PublicMessage())
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
}

type fakeVerifier struct{}

func (fakeVerifier) VerifySession(_ context.Context, token string) (services.Identity, error) {
	switch token {
	case "":
		return services.Identity{}, apperrors.New(apperrors.CodeUnauthenticated, "Access denied. No token provided.")
	case "admin-token":
		return services.Identity{UserID: "a1", Role: models.RoleAdmin}, nil
	case "user-token":
		return services.Identity{UserID: "u1", Role: models.RoleUser}, nil
	}
	return services.Identity{}, apperrors.New(apperrors.CodeInvalidToken, "Invalid token")
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp()
	app.Get("/me", AuthRequired(fakeVerifier{}, nil), func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		require.True(t, ok)
		return c.SendString(identity.UserID)
	})
	app.Get("/admin", AuthRequired(fakeVerifier{}, nil), AdminRequired(services.NewAuthService(repositories.NewMemoryUserRepository(), "secret")), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	cases := []struct {
		name   string
		path   string
		setup  func(*http.Request)
		status int
	}{
		{"no token", "/me", func(*http.Request) {}, fiber.StatusUnauthorized},
		{"cookie", "/me", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "user-token"}) }, fiber.StatusOK},
		{"bearer", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer user-token") }, fiber.StatusOK},
		{"bad token", "/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, fiber.StatusUnauthorized},
		{"customer on admin route", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer user-token") }, fiber.StatusForbidden},
		{"admin on admin route", "/admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin-token") }, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			tc.setup(req)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

type denyAll struct {
	seen []models.Role
}

func (d *denyAll) RequireRole(_ services.Identity, role models.Role) error {
	d.seen = append(d.seen, role)
	return apperrors.Forbidden("closed")
}

func TestAdminRequiredDelegatesToAuthorizer(t *testing.T) {
	authorizer := &denyAll{}
	app := newTestApp()
	app.Get("/admin", AuthRequired(fakeVerifier{}, nil), AdminRequired(authorizer), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []models.Role{models.RoleAdmin}, authorizer.seen)
}

type stubRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *stubRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func TestAuthRateLimit_WithStore(t *testing.T) {
	store := &stubRateStore{counts: map[string]int64{}}
	app := newTestApp()
	app.Post("/login", AuthRateLimit(AuthRateLimitPolicy{Name: "login", Window: time.Minute, Limit: 2}, store, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"A@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send())
	assert.Equal(t, fiber.StatusOK, send())
	assert.Equal(t, fiber.StatusTooManyRequests, send())

	emailScope := "email:login:" + hashValue("a@example.com")
	assert.EqualValues(t, 2, store.counts[emailScope])
}

func TestAuthRateLimit_InProcessFallback(t *testing.T) {
	app := newTestApp()
	app.Post("/signup", AuthRateLimit(AuthRateLimitPolicy{Name: "signup", Window: time.Minute, Limit: 1}, nil, nil), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/signup", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/signup", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Token abc"))
	assert.Empty(t, bearerToken(""))
}
