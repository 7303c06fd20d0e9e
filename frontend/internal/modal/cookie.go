package modal

import (
	"net/http"

	"github.com/portal-dev/portal/shared/logger"
)

// CookieName carries a modal from the request that raised it to the page that shows it.
const CookieName = "portal_modal"

func WriteCookie(w http.ResponseWriter, s State, secure bool) {
	raw, err := Encode(s)
	if err != nil {
		logger.Log.Error("failed to encode modal", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    raw,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie returns the carried modal. ok is false when there is none or it can't be read.
func ReadCookie(r *http.Request) (State, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return State{}, false
	}
	s, err := Decode(c.Value)
	if err != nil {
		logger.Log.Debug("dropping unreadable modal cookie", "error", err)
		return State{}, false
	}
	return s, true
}
