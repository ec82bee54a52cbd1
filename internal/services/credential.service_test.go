package services

import (
	"testing"
	"time"

	"linecheck/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestHasValidCredential(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected bool
	}{
		{
			name:     "no token",
			token:    "",
			expected: false,
		},
		{
			name:     "opaque token counts as valid",
			token:    "not-a-jwt",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewCredentialService(config.Config{OpsAPIToken: tt.token})
			assert.Equal(t, tt.expected, service.HasValidCredential())
		})
	}
}

func TestHasValidCredentialExpiredJWT(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	service := NewCredentialService(config.Config{OpsAPIToken: token})
	assert.False(t, service.HasValidCredential())
}

func TestHasValidCredentialFutureJWT(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	service := NewCredentialService(config.Config{OpsAPIToken: token})
	assert.True(t, service.HasValidCredential())
}

func TestHasValidCredentialJWTWithoutExpiry(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{Subject: "ops-client"})

	service := NewCredentialService(config.Config{OpsAPIToken: token})
	assert.True(t, service.HasValidCredential())
}

func TestSetTokenReplacesCredential(t *testing.T) {
	service := NewCredentialService(config.Config{})
	assert.False(t, service.HasValidCredential())

	service.SetToken("rotated-token")
	assert.Equal(t, "rotated-token", service.Token())
	assert.True(t, service.HasValidCredential())
}
