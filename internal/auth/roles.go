package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/domain"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// HasRole is an exact match. Admin does not satisfy host or guest.
func HasRole(user *domain.User, role domain.Role) bool {
	return user != nil && user.Role == role
}

// IsOwner compares ids exactly.
func IsOwner(ownerID string, user *domain.User) bool {
	return user != nil && ownerID != "" && ownerID == user.ID
}

// IsOwnerOrHasRole allows the resource owner or any user holding role.
func IsOwnerOrHasRole(ownerID string, user *domain.User, role domain.Role) bool {
	return IsOwner(ownerID, user) || HasRole(user, role)
}

// RequireRole rejects callers whose role is not exactly expected.
func RequireRole(expected domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !HasRole(user, expected) {
			return apperrors.NewForbidden("role mismatch")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a user was attached by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
