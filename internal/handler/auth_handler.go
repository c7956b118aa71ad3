package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/syntheses-api/internal/middleware"
	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	SessionTTL() time.Duration
}

// CookieConfig shapes the admin session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "adminToken"
	}
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Admin login
// @Description Checks the admin password and opens a session, returned both as a token and an HttpOnly cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setCookie(c, res.Token, int(h.service.SessionTTL().Seconds()))
	response.JSON(c, http.StatusOK, res)
}

// Logout godoc
// @Summary Admin logout
// @Description Revokes the current session and clears the cookie
// @Tags Authentication
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextSessionKey)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	h.setCookie(c, "", -1)
	response.NoContent(c)
}

// CheckSession godoc
// @Summary Probe the admin session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/check-session [get]
func (h *AuthHandler) CheckSession(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.SessionStatus{Valid: true})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
