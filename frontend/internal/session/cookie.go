package session

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/portal-dev/portal/shared/domain"
)

const (
	TokenCookie = "auth_token"
	EmailCookie = "user_email"
)

// CookieStore keeps the session in two HttpOnly cookies. It is bound to a single request.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, secure: secure}
}

func (c *CookieStore) Load() (domain.Session, error) {
	token, err := c.r.Cookie(TokenCookie)
	if err != nil || token.Value == "" {
		return domain.Session{}, ErrNoSession
	}
	email, err := c.r.Cookie(EmailCookie)
	if err != nil || email.Value == "" {
		return domain.Session{}, ErrNoSession
	}
	decoded, err := url.QueryUnescape(email.Value)
	if err != nil {
		return domain.Session{}, ErrNoSession
	}
	return domain.Session{Token: token.Value, Email: decoded}, nil
}

func (c *CookieStore) Save(s domain.Session) error {
	if !s.Valid() {
		return errors.New("session needs both token and email")
	}
	http.SetCookie(c.w, c.cookie(TokenCookie, s.Token, 0))
	http.SetCookie(c.w, c.cookie(EmailCookie, url.QueryEscape(s.Email), 0))
	return nil
}

func (c *CookieStore) Clear() error {
	http.SetCookie(c.w, c.cookie(TokenCookie, "", -1))
	http.SetCookie(c.w, c.cookie(EmailCookie, "", -1))
	return nil
}

func (c *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
