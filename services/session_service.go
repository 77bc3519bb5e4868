package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reinos-tcg/backend/config"
	webmodels "github.com/reinos-tcg/backend/models"
)

const SessionCookieName = "reinos_session"

// SessionService manages the HMAC-signed admin session cookie.
type SessionService struct {
	secret []byte
}

func NewSessionService(cfg config.AuthConfig) *SessionService {
	return &SessionService{secret: []byte(cfg.SessionSecret)}
}

// CreateSession signs the session payload and sets the cookie.
func (s *SessionService) CreateSession(c *fiber.Ctx, session *webmodels.AdminSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    s.sign(payload),
		Path:     "/",
		MaxAge:   int(24 * time.Hour / time.Second),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	slog.Info("Admin session created",
		slog.String("email", session.Email),
		slog.String("name", session.Name))

	return nil
}

// GetSession verifies the cookie signature and returns the session, or an
// error for missing, tampered or expired cookies.
func (s *SessionService) GetSession(c *fiber.Ctx) (*webmodels.AdminSession, error) {
	cookie := c.Cookies(SessionCookieName)
	if cookie == "" {
		return nil, fmt.Errorf("no session cookie found")
	}

	payload, err := s.verify(cookie)
	if err != nil {
		return nil, fmt.Errorf("invalid session signature: %w", err)
	}

	var session webmodels.AdminSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.DestroySession(c)
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

func (s *SessionService) DestroySession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (s *SessionService) sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	sig := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString(sig)
}

func (s *SessionService) verify(signed string) ([]byte, error) {
	parts := strings.SplitN(signed, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed session value")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("undecodable payload: %w", err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("undecodable signature: %w", err)
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, fmt.Errorf("signature mismatch")
	}

	return payload, nil
}
