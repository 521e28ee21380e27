package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureOptions returns the header policy for the API. Responses are JSON
// and never rendered, so the CSP denies everything and framing is blocked
// outright. Dev mode relaxes checks that break plain-HTTP local runs.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
	}
}

// NewSecure wraps unrolled/secure as a chi-compatible middleware.
func NewSecure(opts secure.Options) func(next http.Handler) http.Handler {
	s := secure.New(opts)
	return s.Handler
}
