// Package auth drives login and registration on behalf of a view: local checks first,
// then the backend call, then the session store.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/portal-dev/portal/frontend/internal/session"
	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/logger"
	"github.com/portal-dev/portal/shared/validation"
)

var ErrEmptyCredentials = errors.New("email and password are required")

const (
	DefaultLoginRejection    = "Login failed."
	DefaultRegisterRejection = "Registration failed."
)

// RejectedError is a well-formed refusal from the backend (success=false).
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

type Client interface {
	Ping(ctx context.Context) (string, error)
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error)
}

type Flow struct {
	client Client
}

func NewFlow(client Client) *Flow {
	return &Flow{client: client}
}

func (f *Flow) Ping(ctx context.Context) (string, error) {
	return f.client.Ping(ctx)
}

// Login never calls the backend with an empty field.
func (f *Flow) Login(ctx context.Context, store session.Store, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Session{}, ErrEmptyCredentials
	}

	resp, err := f.client.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}
	return f.accept(store, resp, DefaultLoginRejection)
}

// Register returns validation.FieldErrors without calling the backend when the form is invalid.
func (f *Flow) Register(ctx context.Context, store session.Store, form validation.Registration) (domain.Session, error) {
	form.Email = strings.TrimSpace(form.Email)
	if fe := validation.ValidateRegistration(form); !fe.Empty() {
		return domain.Session{}, fe
	}

	resp, err := f.client.Register(ctx, api.RegisterRequest{
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Name:            form.Name,
	})
	if err != nil {
		return domain.Session{}, err
	}
	return f.accept(store, resp, DefaultRegisterRejection)
}

func (f *Flow) accept(store session.Store, resp api.AuthResponse, fallback string) (domain.Session, error) {
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = fallback
		}
		return domain.Session{}, &RejectedError{Message: msg}
	}

	sess := domain.Session{Token: resp.Token, Email: resp.Email}
	if !sess.Valid() {
		logger.Log.Warn("backend accepted credentials without a token or email")
		return domain.Session{}, &RejectedError{Message: fallback}
	}
	if err := store.Save(sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}
