package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func request(allowed []string, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(allowed))
	r.GET("/get-files", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/get-files", nil)
	req.Header.Set("Origin", origin)
	r.ServeHTTP(w, req)
	return w
}

func TestAllowListedOrigin(t *testing.T) {
	w := request([]string{"https://syntheses.example/"}, "https://syntheses.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://syntheses.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRejectsUnknownOrigin(t *testing.T) {
	w := request([]string{"https://syntheses.example"}, "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEmptyListReflectsOrigin(t *testing.T) {
	w := request(nil, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
