package middleware

import (
	"context"
	"net/http"

	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/frontend/internal/session"
	"github.com/portal-dev/portal/shared/domain"
)

type sessionContextKey struct{}

// LoadSession puts the cookie session, if any, into the request context.
func LoadSession(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := session.NewCookieStore(w, r, secureCookies).Load()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), sessionContextKey{}, &sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext is nil for logged-out visitors.
func SessionFromContext(r *http.Request) *domain.Session {
	sess, _ := r.Context().Value(sessionContextKey{}).(*domain.Session)
	return sess
}

// RequireSession sends logged-out visitors to the login page. It must run after LoadSession.
func RequireSession(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFromContext(r) == nil {
				RedirectToLogin(w, r, secureCookies, "Please log in to continue.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectToLogin drops the session and shows msg on the login page.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, secureCookies bool, msg string) {
	_ = session.NewCookieStore(w, r, secureCookies).Clear()
	m := modal.New()
	m.Warning("Login required", msg)
	modal.WriteCookie(w, m.State(), secureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
