package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/reinos-tcg/backend/config"
)

const tokenIssuer = "reinos-catalog"

// TokenService mints and verifies the bearer tokens game clients use
// against the search surface. A client exchanges its pre-shared key for a
// short-lived HS256 JWT.
type TokenService struct {
	secret     []byte
	clientKeys map[string]struct{}
	ttl        time.Duration
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	keys := make(map[string]struct{}, len(cfg.ClientKeys))
	for _, key := range cfg.ClientKeys {
		keys[key] = struct{}{}
	}
	return &TokenService{
		secret:     []byte(cfg.ClientSecret),
		clientKeys: keys,
		ttl:        time.Duration(cfg.TokenTTL) * time.Minute,
	}
}

// Exchange validates a pre-shared client key and mints a JWT for it.
func (s *TokenService) Exchange(clientKey string) (string, error) {
	if _, ok := s.clientKeys[clientKey]; !ok {
		return "", fmt.Errorf("unknown client key")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "game-client",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a bearer token.
func (s *TokenService) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid token claims")
	}
	if claims.Issuer != tokenIssuer {
		return fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}

	return nil
}
