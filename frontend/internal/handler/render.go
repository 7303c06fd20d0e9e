package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	frontend_domain "github.com/portal-dev/portal/frontend/internal/domain"
	"github.com/portal-dev/portal/frontend/internal/middleware"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/logger"
	"github.com/portal-dev/portal/shared/validation"
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

// initCommonTemplateData picks up the modal carried over from the previous request.
// A pending confirmation stays in its cookie until it is confirmed or closed.
func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request, tab string) frontend_domain.CommonTemplateData {
	common := frontend_domain.CommonTemplateData{
		Session:   middleware.SessionFromContext(r),
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
		Tab:       tab,
		Path:      r.URL.Path,
		Validation: frontend_domain.ValidationData{
			NameMinLen:     validation.NameMinLen,
			PasswordMinLen: validation.PasswordMinLen,
			TitleMaxLen:    h.Public.Board.TitleMaxLen,
		},
	}
	if r.Method == http.MethodGet {
		common.Path = r.URL.RequestURI()
	}

	if state, ok := modal.ReadCookie(r); ok {
		if !(state.Open && state.ShowConfirm) {
			modal.ClearCookie(w, h.secure())
		}
		if state.Open {
			common.Modal = state
		}
	}
	return common
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name, tab string, data any) {
	h.renderTemplateWithModal(w, r, name, tab, data, nil)
}

// renderTemplateWithModal renders the page with m open on top of it. A nil m shows
// whatever modal the previous request left behind.
func (h *Handler) renderTemplateWithModal(w http.ResponseWriter, r *http.Request, name, tab string, data any, m *modal.Modal) {
	tmpl, ok := h.getTemplate(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	common := h.initCommonTemplateData(w, r, tab)
	if m != nil && m.IsOpen() {
		common.Modal = m.State()
	}

	wrapped := TemplateData{
		Data:   data,
		Common: common,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// redirectWithModal shows m on the page at targetURL.
func (h *Handler) redirectWithModal(w http.ResponseWriter, r *http.Request, targetURL string, m *modal.Modal) {
	modal.WriteCookie(w, m.State(), h.secure())
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

// localPath keeps redirects on this site.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
