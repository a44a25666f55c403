package auth

import (
	"github.com/spec-kit/volunteer-hub/internal/domain"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/volunteer-hub/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles.
// ADMIN passes every role check.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role == domain.RoleAdmin || len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireEventManager gates routes that create or mutate events.
func RequireEventManager() fiber.Handler {
	return RequireRole(domain.RoleEventManager)
}
