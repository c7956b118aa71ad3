package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the admin session token.
const ContextSessionKey = "adminSession"

// AdminTokenHeader carries the token for clients that cannot keep cookies.
const AdminTokenHeader = "X-Admin-Token"

type sessionAuthorizer interface {
	Authorize(ctx context.Context, token string) bool
}

// AdminSession rejects requests without a live admin session. The token is
// read from the session cookie, a Bearer header or X-Admin-Token, in that order.
func AdminSession(auth sessionAuthorizer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "admin session required"))
			return
		}
		if !auth.Authorize(c.Request.Context(), token) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired session"))
			return
		}

		c.Set(ContextSessionKey, token)
		c.Next()
	}
}

// SessionToken extracts the admin token without validating it.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.GetHeader(AdminTokenHeader))
}
