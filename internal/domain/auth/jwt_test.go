package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret", "procura"))

	token, expiresAt, err := svc.GenerateAccessToken("u-1", "store@example.com", []string{"storekeeper"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "store@example.com", user.Email)
	assert.Equal(t, []string{"storekeeper"}, user.Roles)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret", "procura"))

	other := NewJWTService(DefaultJWTConfig("other-secret", "procura"))
	token, _, err := other.GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	wrongIssuer := NewJWTService(DefaultJWTConfig("secret", "elsewhere"))
	token, _, err = wrongIssuer.GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	cfg := DefaultJWTConfig("secret", "procura")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
