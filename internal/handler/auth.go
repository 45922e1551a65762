package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

// CookieOptions controls the session cookie set on login.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	svc    service.AuthService
	cookie CookieOptions
}

func NewAuthHandler(svc service.AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

func (h *AuthHandler) Register(public, admin *gin.RouterGroup) {
	g := public.Group("/auth")
	{
		g.POST("/login", h.login)
		g.POST("/register", h.register)
		g.POST("/logout", h.logout)
	}
	admin.GET("/me", h.me)
}

func (h *AuthHandler) login(c *gin.Context) {
	var in service.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	session, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	h.setCookie(c, session.Token, int(h.cookie.MaxAge/time.Second))
	response.WriteData(c, http.StatusOK, "signed in", session)
}

func (h *AuthHandler) register(c *gin.Context) {
	var in service.AdminSignupInput
	if !bindJSON(c, &in) {
		return
	}
	admin, err := h.svc.RegisterAdmin(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "admin registered", admin)
}

func (h *AuthHandler) logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	response.WriteData(c, http.StatusOK, "signed out", nil)
}

func (h *AuthHandler) me(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		response.WriteError(c, service.ErrUnauthorized)
		return
	}
	response.WriteData(c, http.StatusOK, "session fetched", gin.H{
		"id":        claims.Subject,
		"email":     claims.Email,
		"role":      claims.Role,
		"expiresAt": claims.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, maxAge, "/", "", h.cookie.Secure, true)
}
