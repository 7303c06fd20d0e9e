package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/portal-dev/portal/frontend/internal/auth"
	frontend_domain "github.com/portal-dev/portal/frontend/internal/domain"
	"github.com/portal-dev/portal/frontend/internal/middleware"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/frontend/internal/session"
	"github.com/portal-dev/portal/shared/logger"
	"github.com/portal-dev/portal/shared/validation"
)

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r) != nil {
		http.Redirect(w, r, "/board", http.StatusSeeOther)
		return
	}
	h.renderTemplate(w, r, "login.html", "", frontend_domain.LoginPageData{Email: r.URL.Query().Get("email")})
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	store := session.NewCookieStore(w, r, h.secure())
	sess, err := h.Auth.Login(r.Context(), store, email, password)
	if err != nil {
		logger.Log.Debug("login failed", "email", email, "error", err)
		m := modal.New()
		auth.Notify(m, auth.OpLogin, err)
		h.renderTemplateWithModal(w, r, "login.html", "", frontend_domain.LoginPageData{Email: email}, m)
		return
	}

	m := modal.New()
	auth.NotifyLoggedIn(m, sess)
	h.redirectWithModal(w, r, "/board", m)
}

func (h *Handler) RegisterGetHandler(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r) != nil {
		http.Redirect(w, r, "/board", http.StatusSeeOther)
		return
	}
	h.renderTemplate(w, r, "register.html", "", frontend_domain.RegisterPageData{})
}

// RegisterPostHandler shows field problems inline next to their inputs. Everything else
// goes through the modal.
func (h *Handler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	form := validation.Registration{
		Email:           strings.TrimSpace(r.FormValue("email")),
		Name:            strings.TrimSpace(r.FormValue("name")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}
	data := frontend_domain.RegisterPageData{Email: form.Email, Name: form.Name}

	store := session.NewCookieStore(w, r, h.secure())
	_, err := h.Auth.Register(r.Context(), store, form)
	if err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			data.Errors = fe
			h.renderTemplate(w, r, "register.html", "", data)
			return
		}
		logger.Log.Debug("registration failed", "email", form.Email, "error", err)
		m := modal.New()
		auth.Notify(m, auth.OpRegister, err)
		h.renderTemplateWithModal(w, r, "register.html", "", data, m)
		return
	}

	m := modal.New()
	auth.NotifyRegistered(m, form.Name)
	h.redirectWithModal(w, r, "/board", m)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r) != nil {
		h.Cards.Drop(cardKey(r))
	}
	if err := session.NewCookieStore(w, r, h.secure()).Clear(); err != nil {
		logger.Log.Error("failed to clear session", "error", err)
	}
	m := modal.New()
	auth.NotifyLoggedOut(m)
	h.redirectWithModal(w, r, "/login", m)
}

// PingHandler is the "test backend connection" button on the login page.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	m := modal.New()
	text, err := h.Auth.Ping(r.Context())
	if err != nil {
		logger.Log.Info("backend connection test failed", "error", err)
		auth.Notify(m, auth.OpPing, err)
	} else {
		auth.NotifyPing(m, text)
	}
	h.redirectWithModal(w, r, "/login", m)
}
