package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-at-least-32-chars!"

func newTestTokenService(t *testing.T, accessTTL time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(accessTTL, 24*time.Hour, "qrhub-test", "qrhub-api", testSecret)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	t.Run("RejectsMissingSecret", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", "")
		assert.Error(t, err)
	})

	t.Run("RejectsShortSecret", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", "short")
		assert.Error(t, err)
	})

	t.Run("RejectsMissingIssuerOrAudience", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, 24*time.Hour, "", "aud", testSecret)
		assert.Error(t, err)
		_, err = NewTokenService(time.Hour, 24*time.Hour, "iss", "", testSecret)
		assert.Error(t, err)
	})
}

func TestTokenLifecycle(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	t.Run("GenerateAndValidate", func(t *testing.T) {
		access, refresh, err := svc.GenerateTokens(42)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)

		claims, err := svc.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.BusinessID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)

		refreshClaims, err := svc.ValidateToken(refresh)
		require.NoError(t, err)
		assert.Equal(t, "refresh", refreshClaims.TokenType)
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("RejectsWrongSecret", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, 24*time.Hour, "qrhub-test", "qrhub-api", "another-secret-key-at-least-32-chars!!")
		require.NoError(t, err)

		access, _, err := other.GenerateTokens(7)
		require.NoError(t, err)

		_, err = svc.ValidateToken(access)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("RejectsExpired", func(t *testing.T) {
		shortLived := newTestTokenService(t, -time.Minute)
		access, _, err := shortLived.GenerateTokens(9)
		require.NoError(t, err)

		_, err = shortLived.ValidateToken(access)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("RefreshIssuesNewPair", func(t *testing.T) {
		_, refresh, err := svc.GenerateTokens(42)
		require.NoError(t, err)

		newAccess, newRefresh, err := svc.RefreshToken(refresh)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.BusinessID)
		assert.NotEmpty(t, newRefresh)
	})

	t.Run("RefreshRejectsAccessToken", func(t *testing.T) {
		access, _, err := svc.GenerateTokens(42)
		require.NoError(t, err)

		_, _, err = svc.RefreshToken(access)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
