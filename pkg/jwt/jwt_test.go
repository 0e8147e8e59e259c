package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func TestAdminTokenRoundTrip(t *testing.T) {
	m := NewManager(testSecret, time.Hour)

	token, expiresAt, err := m.GenerateAdminToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "flipper-backend", claims.Issuer)
}

func TestValidateRejects(t *testing.T) {
	m := NewManager(testSecret, time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("another-secret-value-xyz", time.Hour)
		token, _, err := other.GenerateAdminToken()
		require.NoError(t, err)

		_, err = m.ValidateAdminToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewManager(testSecret, time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := past.GenerateAdminToken()
		require.NoError(t, err)

		_, err = m.ValidateAdminToken(token)
		assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
	})

	t.Run("non-admin role", func(t *testing.T) {
		claims := Claims{
			Role: "viewer",
			Type: TypeAccess,
			RegisteredClaims: gojwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.ValidateAdminToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateAdminToken("not.a.token")
		assert.Error(t, err)
	})
}
