package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/syntheses-api/internal/service"
)

type authorizerStub struct {
	valid map[string]bool
	seen  []string
}

func (a *authorizerStub) Authorize(_ context.Context, token string) bool {
	a.seen = append(a.seen, token)
	return a.valid[token]
}

func newGuardedRouter(auth *authorizerStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminSession(auth, "adminToken"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextSessionKey))
	})
	return r
}

func TestAdminSessionRejectsMissingToken(t *testing.T) {
	auth := &authorizerStub{}
	r := newGuardedRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "admin session required")
	assert.Empty(t, auth.seen)
}

func TestAdminSessionRejectsUnknownToken(t *testing.T) {
	auth := &authorizerStub{valid: map[string]bool{"good": true}}
	r := newGuardedRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer forged")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []string{"forged"}, auth.seen)
}

func TestAdminSessionAcceptsTokenSources(t *testing.T) {
	auth := &authorizerStub{valid: map[string]bool{"good": true}}
	r := newGuardedRouter(auth)

	cases := map[string]func(*http.Request){
		"cookie": func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "adminToken", Value: "good"}) },
		"bearer": func(req *http.Request) { req.Header.Set("Authorization", "bearer good") },
		"header": func(req *http.Request) { req.Header.Set(AdminTokenHeader, "good") },
	}
	for name, apply := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			apply(req)
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "good", w.Body.String())
		})
	}
}

func TestMetricsLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/get-files", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/get-files", "/nope/1", "/nope/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
