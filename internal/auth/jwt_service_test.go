package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightbooking/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{ID: 42, Email: "ana@example.com", Name: "Ana", Role: model.RoleAirline}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, model.RoleAirline, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_Rejects(t *testing.T) {
	user := &model.User{ID: 1, Email: "a@b.c", Role: model.RoleUser}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTService("one", time.Hour).GenerateAccessToken(user)
		require.NoError(t, err)

		_, err = NewJWTService("two", time.Hour).ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		svc := NewJWTService("secret", time.Hour)
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := svc.GenerateAccessToken(user)
		require.NoError(t, err)

		_, err = NewJWTService("secret", time.Hour).ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewJWTService("secret", time.Hour).ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestPrincipal_CanAccess(t *testing.T) {
	admin := &Principal{ID: 1, Role: model.RoleAdmin}
	user := &Principal{ID: 2, Role: model.RoleUser}

	assert.True(t, admin.CanAccess(2))
	assert.True(t, user.CanAccess(2))
	assert.False(t, user.CanAccess(3))
	assert.True(t, user.HasRole(model.RoleAdmin, model.RoleUser))
	assert.False(t, user.HasRole(model.RoleAirline))
}
