package middleware

import (
	"training-portal/backend/config"
	"training-portal/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer token and stores the caller's identity
// for the handlers behind it.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := utils.ExtractIdentityFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !identity.IsAdmin() {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}
		return c.Next()
	}
}

func CurrentIdentity(c *fiber.Ctx) (utils.Identity, bool) {
	identity, ok := c.Locals(identityKey).(utils.Identity)
	if !ok || identity.LearnerID == "" {
		return utils.Identity{}, false
	}
	return identity, true
}
