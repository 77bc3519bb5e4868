package handlers

import (
	"log/slog"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"

	"github.com/reinos-tcg/backend/models"
	"github.com/reinos-tcg/backend/utils"
)

// ClientToken exchanges a pre-shared game-client key for a bearer JWT.
func ClientToken(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input struct {
			ClientKey string `json:"client_key"`
		}
		if err := c.BodyParser(&input); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		token, err := webApp.Tokens.Exchange(input.ClientKey)
		if err != nil {
			slog.Warn("Client token exchange rejected",
				slog.String("ip", utils.GetIPAddress(c)))
			return utils.SendUnauthorized(c, "Invalid client key")
		}

		return utils.SendSuccess(c, fiber.Map{"token": token}, "Token issued")
	}
}

// GoogleLogin verifies an admin's Google ID token and establishes the
// signed session cookie.
func GoogleLogin(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input struct {
			IDToken string `json:"id_token"`
		}
		if err := c.BodyParser(&input); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		v := googleAuthIDTokenVerifier.Verifier{}
		if err := v.VerifyIDToken(input.IDToken, []string{webApp.Config.Auth.GoogleClientID}); err != nil {
			return utils.SendUnauthorized(c, "Invalid Google ID token")
		}

		claimSet, err := googleAuthIDTokenVerifier.Decode(input.IDToken)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to decode ID token")
		}

		if !isAdminEmail(claimSet.Email, webApp.Config.Auth.AdminEmails) {
			slog.Warn("Google login rejected: not an admin",
				slog.String("email", claimSet.Email))
			return utils.SendForbidden(c, "Account is not an administrator")
		}

		session := &models.AdminSession{
			Email:     claimSet.Email,
			Name:      claimSet.Name,
			IsAdmin:   true,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		if err := webApp.Sessions.CreateSession(c, session); err != nil {
			return utils.SendInternalServerError(c, "Failed to create session")
		}

		return utils.SendSuccess(c, fiber.Map{"email": session.Email}, "Logged in")
	}
}

// Logout destroys the admin session.
func Logout(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		webApp.Sessions.DestroySession(c)
		return utils.SendSuccess(c, nil, "Logged out")
	}
}

func isAdminEmail(email string, admins []string) bool {
	for _, admin := range admins {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}
