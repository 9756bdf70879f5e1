package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-32-characters-long-minimum"

func TestManager_GenerateAndValidate(t *testing.T) {
	m := NewManager(testSecret, "email-api", 15*time.Minute, 7*24*time.Hour)

	t.Run("生成并验证令牌对", func(t *testing.T) {
		pair, err := m.GenerateTokenPair(42, "admin@example.com", []string{"ROLE_ADMIN", "ROLE_USER"})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, int64(900), pair.ExpiresIn)

		claims, err := m.ValidateToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "admin@example.com", claims.Email)
		assert.True(t, claims.HasRole("ROLE_ADMIN"))
		assert.True(t, claims.HasRole("ROLE_USER"))
		assert.False(t, claims.HasRole("ROLE_SUPER"))
	})

	t.Run("篡改的令牌验证失败", func(t *testing.T) {
		pair, err := m.GenerateTokenPair(1, "a@b.com", []string{"ROLE_USER"})
		require.NoError(t, err)

		_, err = m.ValidateToken(pair.AccessToken + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("错误密钥签发的令牌验证失败", func(t *testing.T) {
		other := NewManager("another-secret-key-32-characters-long!!", "email-api", time.Minute, time.Hour)
		pair, err := other.GenerateTokenPair(1, "a@b.com", []string{"ROLE_USER"})
		require.NoError(t, err)

		_, err = m.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("过期令牌返回过期错误", func(t *testing.T) {
		expired := NewManager(testSecret, "email-api", -time.Minute, time.Hour)
		pair, err := expired.GenerateTokenPair(1, "a@b.com", []string{"ROLE_USER"})
		require.NoError(t, err)

		_, err = m.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m := NewManager(testSecret, "email-api", 15*time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateTokenPair(7, "ops@example.com", []string{"ROLE_USER"})
	require.NoError(t, err)

	token, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Roles)
}
