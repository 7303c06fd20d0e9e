package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const browserCookieName = "portal_bid"

type browserContextKey struct{}

// BrowserID tags every visitor with a random id so per-browser state can be found again.
func BrowserID(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(browserCookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     browserCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), browserContextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func BrowserIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(browserContextKey{}).(string)
	return id
}
