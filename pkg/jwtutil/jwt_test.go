package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: 1})

	token, err := util.GenerateToken("user_2abc", "owner@example.com", "admin")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.Subject)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: 1})
	other := NewJWTUtil(&JWTConfig{SigningKey: "other", ExpirationHours: 1})

	t.Run("wrong key", func(t *testing.T) {
		token, err := other.GenerateToken("user_1", "", "")
		require.NoError(t, err)
		_, err = util.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTUtil(&JWTConfig{SigningKey: "secret", ExpirationHours: -1})
		token, err := expired.GenerateToken("user_1", "", "")
		require.NoError(t, err)
		_, err = util.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := util.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := util.GenerateToken("", "", "")
		assert.Error(t, err)
	})
}
