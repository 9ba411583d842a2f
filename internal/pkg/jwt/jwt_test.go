//go:build unit

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	issuedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService("secret", time.Hour, "stay-ledger")
	svc.now = func() time.Time { return issuedAt }

	token, expiresAt, err := svc.GenerateToken("guest-1")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), expiresAt)

	t.Run("発行したトークンを検証できる", func(t *testing.T) {
		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "guest-1", claims.Subject)
	})

	t.Run("期限切れ", func(t *testing.T) {
		later := NewService("secret", time.Hour, "stay-ledger")
		later.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("別の秘密鍵", func(t *testing.T) {
		other := NewService("other", time.Hour, "stay-ledger")
		other.now = svc.now
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("発行者が違う", func(t *testing.T) {
		other := NewService("secret", time.Hour, "someone-else")
		other.now = svc.now
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
