package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajious/parkify/internal/auth"
	"github.com/tajious/parkify/internal/models"
)

func newAuthApp(tokens *auth.TokenIssuer, roles ...models.Role) *fiber.App {
	m := NewAuthMiddleware(tokens)
	app := fiber.New()
	app.Get("/", m.Authenticate(), m.RequireRole(roles...), func(c *fiber.Ctx) error {
		claims, _ := Claims(c)
		return c.SendString(string(claims.Role))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	lessor, err := tokens.IssueSession(models.RoleLessor, 1, "lee@example.com")
	require.NoError(t, err)
	user, err := tokens.IssueSession(models.RoleUser, 2, "ada@example.com")
	require.NoError(t, err)
	grant, err := tokens.IssuePasswordChange(1, "lee@example.com")
	require.NoError(t, err)
	foreign, err := auth.NewTokenIssuer("other", time.Hour).IssueSession(models.RoleLessor, 1, "lee@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + lessor, fiber.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign, fiber.StatusUnauthorized},
		{"password grant is not a session", "Bearer " + grant, fiber.StatusUnauthorized},
		{"wrong role", "Bearer " + user, fiber.StatusForbidden},
		{"lessor", "Bearer " + lessor, fiber.StatusOK},
	}

	app := newAuthApp(tokens, models.RoleLessor)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
