package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/reinos-tcg/backend/services"
	"github.com/reinos-tcg/backend/utils"
)

// ClientAuthRequired gates the game-client surface behind a bearer JWT.
// The handlers behind it trust the gate unconditionally and perform no
// further authorization logic.
func ClientAuthRequired(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractBearerToken(c)
		if err != nil {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		if err := tokens.Verify(token); err != nil {
			slog.Debug("Client auth rejected", slog.String("error", err.Error()))
			return utils.SendUnauthorized(c, "Invalid or expired token")
		}

		return c.Next()
	}
}

// AdminRequired gates the admin surface behind the signed session cookie.
func AdminRequired(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessions.GetSession(c)
		if err != nil {
			slog.Debug("Admin auth: no valid session", slog.String("error", err.Error()))
			return utils.SendUnauthorized(c, "Authentication required")
		}

		if !session.IsAdmin {
			slog.Warn("Admin auth: session lacks admin flag",
				slog.String("email", session.Email))
			return utils.SendForbidden(c, "Admin access required")
		}

		c.Locals("admin", session)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", fiber.ErrUnauthorized
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fiber.ErrUnauthorized
	}

	return strings.TrimPrefix(header, prefix), nil
}
