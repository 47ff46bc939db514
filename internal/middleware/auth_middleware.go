package middleware

import (
	"strings"

	"eie-registry/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// RequireAuth validates the bearer token and the single-session version, and
// stores the caller in the request locals. Every 401 carries the login URL
// the portal redirects to.
func RequireAuth(authService service.AuthService, loginURL string) fiber.Handler {
	unauthorized := func(c *fiber.Ctx, msg string) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg, "login_url": loginURL})
	}

	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Missing authorization token")
		}

		user, err := authService.Authenticate(tokenString)
		if err != nil {
			return unauthorized(c, err.Error())
		}

		actor := service.ActorFromUser(user)
		c.Locals(actorKey, actor)
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)
		c.Locals("user_privileges", actor.Privileges)
		c.Locals("org_id", user.OrgID())
		c.Locals("org_role", actor.Role)

		return c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a websocket upgrade, so the upgrade may pass ?token= instead.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c) && c.Query("token") != "" {
			return c.Query("token"), true
		}
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// ActorFrom returns the caller stored by RequireAuth.
func ActorFrom(c *fiber.Ctx) service.Actor {
	actor, _ := c.Locals(actorKey).(service.Actor)
	return actor
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
