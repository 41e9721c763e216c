package middleware

import (
	"fmt"
	"net/http"

	"github.com/solhaus/portal-api/internal/config"
)

// SecurityHeaders sets the configured browser security headers on every
// response and strips headers that identify the server.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			if cfg.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			setIfConfigured(h, "X-Frame-Options", cfg.FrameOptions)
			setIfConfigured(h, "X-XSS-Protection", cfg.XSSProtection)
			setIfConfigured(h, "Content-Security-Policy", cfg.ContentSecurityPolicy)
			setIfConfigured(h, "Referrer-Policy", cfg.ReferrerPolicy)
			setIfConfigured(h, "Permissions-Policy", cfg.PermissionsPolicy)

			if cfg.EnableHSTS {
				h.Set("Strict-Transport-Security", hstsValue(cfg))
			}

			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

func setIfConfigured(h http.Header, name, value string) {
	if value != "" {
		h.Set(name, value)
	}
}

func hstsValue(cfg *config.SecurityConfig) string {
	v := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
	if cfg.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	if cfg.HSTSPreload {
		v += "; preload"
	}
	return v
}
