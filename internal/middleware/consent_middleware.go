package middleware

import (
	"eie-registry/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequireConsent blocks users that have not accepted the current terms of
// service. It must run after RequireAuth.
func RequireConsent(consentService service.ConsentService, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		status, err := consentService.Status(actor.UserID)
		if err != nil {
			logger.Error().Err(err).Str("user_id", actor.UserID.String()).Msg("consent lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check consent"})
		}
		if !status.Accepted {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":       service.ErrConsentRequired.Error(),
				"tos_version": status.Version,
			})
		}
		return c.Next()
	}
}
