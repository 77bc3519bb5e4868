package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reinos-tcg/backend/config"
	webmodels "github.com/reinos-tcg/backend/models"
)

func newTestSessionService() *SessionService {
	return NewSessionService(config.AuthConfig{SessionSecret: "test-session-secret"})
}

func TestSessionSignVerifyRoundTrip(t *testing.T) {
	svc := newTestSessionService()

	session := webmodels.AdminSession{
		Email:     "admin@example.com",
		Name:      "Admin",
		IsAdmin:   true,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	payload, err := json.Marshal(session)
	require.NoError(t, err)

	signed := svc.sign(payload)

	got, err := svc.verify(signed)
	require.NoError(t, err)

	var decoded webmodels.AdminSession
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, session.Email, decoded.Email)
	assert.True(t, decoded.IsAdmin)
}

func TestSessionVerifyRejectsTamperedPayload(t *testing.T) {
	svc := newTestSessionService()

	signed := svc.sign([]byte(`{"email":"admin@example.com"}`))

	// Re-sign a different payload under a different key and splice the parts.
	other := NewSessionService(config.AuthConfig{SessionSecret: "other-secret"})
	forged := other.sign([]byte(`{"email":"attacker@example.com"}`))

	_, err := svc.verify(forged)
	assert.Error(t, err)

	_, err = svc.verify(signed)
	assert.NoError(t, err)
}

func TestSessionVerifyRejectsMalformedValues(t *testing.T) {
	svc := newTestSessionService()

	for _, value := range []string{"", "no-dot", "a.b", "!!!.###"} {
		_, err := svc.verify(value)
		assert.Error(t, err, "value %q should not verify", value)
	}
}
