package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/community-hub-service/internal/auth"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/service"
)

const adminToken = "let-me-in-please"

func newAuthService(h *harness) (service.AuthService, *auth.Manager) {
	tokens := auth.NewManager("0123456789abcdef0123456789abcdef", "hub-test", time.Hour)
	return service.NewAuthService(adminRepo{h.store}, activityRepo{h.store}, tokens, adminToken, nopLog), tokens
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	h := newHarness()
	svc, _ := newAuthService(h)
	ctx := context.Background()

	admin, err := svc.RegisterAdmin(ctx, service.AdminSignupInput{Email: " Root@Example.com", Password: "Sup3rSecret", AdminToken: adminToken})
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", admin.Email)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NotEqual(t, "Sup3rSecret", h.store.admins["root@example.com"].PasswordHash)
	assert.Equal(t, model.ActionAdminRegistered, h.store.activities[0].Action)

	_, err = svc.RegisterAdmin(ctx, service.AdminSignupInput{Email: "root@example.com", Password: "Sup3rSecret", AdminToken: adminToken})
	assert.Equal(t, service.CodeEmailExists, conflictCode(t, err))

	session, err := svc.Login(ctx, service.LoginInput{Email: "ROOT@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.Admin.LastLogin)
	assert.NotNil(t, h.store.admins["root@example.com"].LastLogin)

	claims, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", claims.Email)
	assert.Equal(t, admin.ID, claims.Subject)

	_, err = svc.Login(ctx, service.LoginInput{Email: "root@example.com", Password: "WrongPass1"})
	require.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = svc.Login(ctx, service.LoginInput{Email: "nobody@example.com", Password: "Sup3rSecret"})
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_RegisterAdmin_Rejections(t *testing.T) {
	h := newHarness()
	svc, _ := newAuthService(h)

	_, err := svc.RegisterAdmin(context.Background(), service.AdminSignupInput{Email: "a@example.com", Password: "Sup3rSecret", AdminToken: "wrong-token-value"})
	require.ErrorIs(t, err, service.ErrForbidden)

	_, err = svc.RegisterAdmin(context.Background(), service.AdminSignupInput{Email: "a@example.com", Password: "alllowercase1", AdminToken: adminToken})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, []string{"password"}, fieldNames(err))
	assert.Empty(t, h.store.admins)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	h := newHarness()
	svc, _ := newAuthService(h)
	_, err := svc.RegisterAdmin(context.Background(), service.AdminSignupInput{Email: "a@example.com", Password: "Sup3rSecret", AdminToken: adminToken})
	require.NoError(t, err)
	u := h.store.admins["a@example.com"]
	u.IsActive = false
	h.store.admins["a@example.com"] = u

	_, err = svc.Login(context.Background(), service.LoginInput{Email: "a@example.com", Password: "Sup3rSecret"})
	require.ErrorIs(t, err, service.ErrForbidden)
}

func TestAuthService_Authenticate(t *testing.T) {
	h := newHarness()
	svc, tokens := newAuthService(h)

	_, err := svc.Authenticate("")
	require.ErrorIs(t, err, service.ErrUnauthorized)
	_, err = svc.Authenticate("garbage")
	require.ErrorIs(t, err, service.ErrUnauthorized)

	member, _, err := tokens.Issue(model.AdminUser{Email: "m@example.com", Role: "member"})
	require.NoError(t, err)
	_, err = svc.Authenticate(member)
	require.True(t, errors.Is(err, service.ErrForbidden))

	expired, _, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(model.AdminUser{Email: "a@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.Authenticate(expired)
	require.ErrorIs(t, err, service.ErrUnauthorized)
}
