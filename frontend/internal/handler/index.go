package handler

import (
	"net/http"

	"github.com/portal-dev/portal/frontend/internal/middleware"
)

// IndexGetHandler sends visitors to the board when logged in, otherwise to the login page.
func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r) != nil {
		http.Redirect(w, r, "/board", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
