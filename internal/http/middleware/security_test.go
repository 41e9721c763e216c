package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solhaus/portal-api/internal/config"
	"github.com/solhaus/portal-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
)

func serveWithSecurity(cfg *config.SecurityConfig) *httptest.ResponseRecorder {
	handler := middleware.SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("sets the configured headers", func(t *testing.T) {
		rec := serveWithSecurity(&config.SecurityConfig{
			ContentTypeNosniff:    true,
			FrameOptions:          "DENY",
			XSSProtection:         "1; mode=block",
			ContentSecurityPolicy: "default-src 'self'",
			ReferrerPolicy:        "no-referrer",
		})

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
		assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("composes the HSTS directive", func(t *testing.T) {
		rec := serveWithSecurity(&config.SecurityConfig{
			EnableHSTS:            true,
			HSTSMaxAge:            31536000,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		})

		assert.Equal(t, "max-age=31536000; includeSubDomains; preload",
			rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("unconfigured headers are not set", func(t *testing.T) {
		rec := serveWithSecurity(&config.SecurityConfig{})

		assert.Empty(t, rec.Header().Get("X-Content-Type-Options"))
		assert.Empty(t, rec.Header().Get("X-Frame-Options"))
		assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	})
}
