package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// Browsers talk to this API with fetch and EventSource only, so the CSP can
// stay locked to self.
const contentSecurityPolicy = "default-src 'self'; connect-src 'self'"

// NewSecure returns the security-header middleware. In development mode the
// headers are still set but SSL redirection and HSTS are disabled.
func NewSecure(isDevelopment bool) func(next http.Handler) http.Handler {
	opts := secure.Options{
		IsDevelopment:         isDevelopment,
		SSLRedirect:           !isDevelopment,
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	return secure.New(opts).Handler
}
