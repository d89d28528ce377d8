package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ipForRequest(t *testing.T, configure func(r *http.Request)) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.10:41234"
	if configure != nil {
		configure(c.Request)
	}
	return clientIP(c)
}

func TestClientIP(t *testing.T) {
	t.Run("prefers first forwarded address", func(t *testing.T) {
		got := ipForRequest(t, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		})
		assert.Equal(t, "203.0.113.7", got)
	})

	t.Run("falls back to real ip header", func(t *testing.T) {
		got := ipForRequest(t, func(r *http.Request) {
			r.Header.Set("X-Real-IP", " 203.0.113.9 ")
		})
		assert.Equal(t, "203.0.113.9", got)
	})

	t.Run("strips port from the socket address", func(t *testing.T) {
		assert.Equal(t, "192.0.2.10", ipForRequest(t, nil))
	})
}
