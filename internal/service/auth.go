package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/auth"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/serialize"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AdminSignupInput struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=100,password"`
	AdminToken string `json:"adminToken" validate:"required,min=10"`
}

// Session is a signed-in admin and the token that proves it.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expiresAt"`
	Admin     serialize.Admin `json:"admin"`
}

type authService struct {
	admins     repository.AdminRepository
	tokens     *auth.Manager
	adminToken []byte
	audit      auditTrail
	log        zerolog.Logger
}

func NewAuthService(admins repository.AdminRepository, activities repository.ActivityRepository, tokens *auth.Manager, adminToken string, logger zerolog.Logger) AuthService {
	l := logger.With().Str("module", "service").Str("component", "auth").Logger()
	return &authService{
		admins:     admins,
		tokens:     tokens,
		adminToken: []byte(adminToken),
		audit:      auditTrail{repo: activities, log: l},
		log:        l,
	}
}

// Login checks the password of an active account and issues a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return Session{}, err
	}

	u, err := s.admins.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		s.log.Error().Err(err).Msg("load admin failed")
		return Session{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
		s.log.Info().Str("admin_id", u.ID.Hex()).Msg("login rejected: wrong password")
		return Session{}, ErrUnauthorized
	}
	if !u.IsActive {
		s.log.Info().Str("admin_id", u.ID.Hex()).Msg("login rejected: inactive account")
		return Session{}, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}

	now := model.Now()
	if err := s.admins.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn().Err(err).Str("admin_id", u.ID.Hex()).Msg("last login not recorded")
	} else {
		u.LastLogin = &now
	}
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	s.log.Info().Str("admin_id", u.ID.Hex()).Msg("admin signed in")
	return Session{Token: token, ExpiresAt: serialize.Timestamp(exp), Admin: serialize.FromAdmin(u)}, nil
}

// RegisterAdmin creates an account when the caller presents the configured admin token.
func (s *authService) RegisterAdmin(ctx context.Context, in AdminSignupInput) (serialize.Admin, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return serialize.Admin{}, err
	}
	if len(s.adminToken) == 0 || subtle.ConstantTimeCompare([]byte(in.AdminToken), s.adminToken) != 1 {
		s.log.Warn().Msg("admin registration rejected: bad admin token")
		return serialize.Admin{}, fmt.Errorf("%w: invalid admin token", ErrForbidden)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return serialize.Admin{}, err
	}
	now := model.Now()
	u := model.AdminUser{
		ID:           objectid.NewWithTime(now),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return serialize.Admin{}, conflict(CodeEmailExists, "An account with this email already exists")
		}
		s.log.Error().Err(err).Msg("create admin failed")
		return serialize.Admin{}, err
	}
	s.audit.note(ctx, newActivity(model.ActionAdminRegistered, "New admin registered: "+u.Email, nil, nil))
	s.log.Info().Str("admin_id", u.ID.Hex()).Msg("admin registered")
	return serialize.FromAdmin(u), nil
}

// Authenticate verifies a session token and requires the admin role.
func (s *authService) Authenticate(token string) (auth.Claims, error) {
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("session token rejected")
		return auth.Claims{}, ErrUnauthorized
	}
	if claims.Role != model.RoleAdmin {
		return claims, ErrForbidden
	}
	return claims, nil
}
