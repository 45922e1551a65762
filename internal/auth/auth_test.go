package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/community-hub-service/internal/auth"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
)

const secret = "0123456789abcdef0123456789abcdef"

func admin() model.AdminUser {
	return model.AdminUser{ID: objectid.New(), Email: "root@example.com", Role: model.RoleAdmin, IsActive: true}
}

func TestIssueAndVerify(t *testing.T) {
	m := auth.NewManager(secret, "hub", 7*24*time.Hour)
	u := admin()

	token, exp, err := m.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.Subject)
	assert.Equal(t, "root@example.com", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestVerify_Rejects(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := auth.NewManager(secret, "hub", time.Hour).WithClock(func() time.Time { return base })
	token, _, err := m.Issue(admin())
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := m.WithClock(func() time.Time { return base.Add(2 * time.Hour) })
		_, err := later.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewManager("ffffffffffffffffffffffffffffffff", "hub", time.Hour).WithClock(func() time.Time { return base })
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewManager(secret, "someone-else", time.Hour).WithClock(func() time.Time { return base })
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Issuer:    "hub",
			ExpiresAt: jwt.NewNumericDate(base.Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(none)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestPasswords(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)
	assert.NoError(t, auth.CheckPassword(hash, "correct horse battery"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), auth.ErrWrongPassword)
	assert.ErrorIs(t, auth.CheckPassword("", "anything"), auth.ErrWrongPassword)
}
