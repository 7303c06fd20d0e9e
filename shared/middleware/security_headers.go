package middleware

import (
	"net/http"
)

// Content-Security-Policy values for the two portal servers.
const (
	// The web frontend serves its pages, scripts, QR images and the countdown socket itself.
	FrontendCSP = "default-src 'self'; img-src 'self' data:; style-src 'self'; script-src 'self'; " +
		"connect-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'self'"
	// The backend answers JSON only.
	APICSP = "default-src 'none'; frame-ancestors 'none'"
)

// SecurityHeadersWithCSP sets the headers every portal response carries. HSTS is only sent
// when the server is reached over HTTPS; an empty csp leaves the policy header out.
func SecurityHeadersWithCSP(isHTTPS bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Frame-Options", "DENY")
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("Referrer-Policy", "same-origin")
			// the boarding card is shown on screen, never scanned by the page itself
			headers.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=(), display-capture=()")

			if csp != "" {
				headers.Set("Content-Security-Policy", csp)
			}
			if isHTTPS {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NoStore is applied to the boarding card routes. A saved page or image must not keep
// showing a code after it has expired.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
