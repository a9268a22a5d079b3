package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndVerify(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	token, err := manager.GenerateToken("user-1", "nick", 5)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "nick", claims.Nickname)
	assert.Equal(t, 5, claims.Level)
	assert.False(t, claims.IsAdmin())
}

func TestAdminLevel(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	token, err := manager.GenerateToken("admin-1", "", AdminLevel)
	assert.NoError(t, err)

	claims, err := manager.VerifyToken(token)
	assert.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestExpiredToken(t *testing.T) {
	manager := NewManager("secret", -time.Minute)

	token, err := manager.GenerateToken("user-1", "", 1)
	assert.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecret(t *testing.T) {
	manager := NewManager("secret", time.Hour)
	other := NewManager("different", time.Hour)

	token, err := manager.GenerateToken("user-1", "", 1)
	assert.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageToken(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	_, err := manager.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
