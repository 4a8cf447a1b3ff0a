package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// AuthOptions configures the WithAuth helper. An empty Roles list accepts any authenticated principal.
type AuthOptions struct {
	Roles       []models.Role
	RequireUser bool
}

// WithAuth wraps a single handler with authentication and role guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	requireUser := opts.RequireUser || len(opts.Roles) > 0

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			if requireUser {
				return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
			}
			return handler(c)
		}

		if len(opts.Roles) == 0 {
			return handler(c)
		}

		for _, role := range opts.Roles {
			if principal.Is(role) {
				return handler(c)
			}
		}

		return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
	}
}
