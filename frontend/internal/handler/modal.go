package handler

import (
	"net/http"

	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/logger"
)

// ModalConfirmHandler runs the action of the open confirm dialog.
func (h *Handler) ModalConfirmHandler(w http.ResponseWriter, r *http.Request) {
	back := localPath(r.FormValue("return"))

	state, ok := modal.ReadCookie(r)
	if !ok {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	action, ok := modal.FromState(state).ConfirmAction()
	if !ok {
		modal.ClearCookie(w, h.secure())
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	switch action.Kind {
	case modal.ActionDeletePost:
		h.deletePost(w, r, action)
	default:
		logger.Log.Warn("unknown modal action", "kind", action.Kind)
		modal.ClearCookie(w, h.secure())
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

// ModalCloseHandler dismisses the modal without running anything.
func (h *Handler) ModalCloseHandler(w http.ResponseWriter, r *http.Request) {
	modal.ClearCookie(w, h.secure())
	http.Redirect(w, r, localPath(r.FormValue("return")), http.StatusSeeOther)
}
