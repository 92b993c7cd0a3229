package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"backend/internal/models"
	"backend/internal/repository"
)

func newAuthService() AuthService {
	return NewAuthService(repository.NewMemoryAuthRepository(), []byte("test-secret"), zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()

	user, err := svc.Register("alice", "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "correct horse battery staple", user.PasswordHash)

	token, expiresAt, err := svc.Login("alice", "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService()

	_, err := svc.Register("alice", "password1")
	require.NoError(t, err)
	_, err = svc.Register("alice", "password2")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService()

	_, _, err := svc.Login("nobody", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Register("alice", "right password")
	require.NoError(t, err)
	_, _, err = svc.Login("alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
