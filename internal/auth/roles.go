package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/domain"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

// RequireStaff ensures a staff account is authenticated.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CallerFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if caller.Role != domain.StaffRoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
