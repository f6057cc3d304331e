package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// StaticTokenSource Tests
// =============================================================================

func TestStaticTokenSource(t *testing.T) {
	s := NewStaticTokenSource("fixed")

	token, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)
}

// =============================================================================
// JWTTokenSource Tests
// =============================================================================

func TestJWTTokenSource_MintsValidToken(t *testing.T) {
	s := NewJWTTokenSource("shared-secret", "dispatch", "dispatchd", time.Hour)

	raw, err := s.Token(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("shared-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "dispatch", claims.Issuer)
	assert.Equal(t, "dispatchd", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTTokenSource_CachesUntilExpiry(t *testing.T) {
	s := NewJWTTokenSource("shared-secret", "dispatch", "dispatchd", time.Hour)

	first, err := s.Token(context.Background())
	require.NoError(t, err)
	second, err := s.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestJWTTokenSource_ZeroTTLDefaults(t *testing.T) {
	s := NewJWTTokenSource("shared-secret", "dispatch", "dispatchd", 0)
	assert.Equal(t, 15*time.Minute, s.ttl)
}
