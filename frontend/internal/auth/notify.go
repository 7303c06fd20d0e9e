package auth

import (
	"errors"
	"fmt"

	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/validation"
)

type Op string

const (
	OpLogin    Op = "login"
	OpRegister Op = "register"
	OpPing     Op = "ping"
	OpBoard    Op = "board"
)

var rejectedTitles = map[Op]string{
	OpLogin:    "Login failed",
	OpRegister: "Registration failed",
	OpPing:     "Connection test failed",
	OpBoard:    "Request failed",
}

// Notify shows err on m using the modal kind of its failure class.
func Notify(m *modal.Modal, op Op, err error) {
	var (
		fe  validation.FieldErrors
		se  *apiclient.StatusError
		rej *RejectedError
	)
	switch {
	case errors.Is(err, ErrEmptyCredentials):
		m.Error("Input error", "Please enter both your email and password.")
	case errors.As(err, &fe):
		m.Error("Input error", fe.Error())
	case errors.Is(err, apiclient.ErrUnreachable):
		m.Connection("Cannot reach the server", "Check that the backend server is running.")
	case errors.As(err, &se):
		if op == OpPing {
			m.Error(rejectedTitles[OpPing], fmt.Sprintf("Status code: %d", se.StatusCode))
			return
		}
		m.Error("Server error", "The server ran into a problem.\nPlease try again in a moment.")
	case errors.As(err, &rej):
		m.Error(rejectedTitles[op], rej.Message)
	default:
		m.Error("Unknown error", "An unknown error occurred.")
	}
}

func NotifyLoggedIn(m *modal.Modal, sess domain.Session) {
	m.Success("Login successful!", fmt.Sprintf("Welcome, %s!", sess.Email))
}

func NotifyRegistered(m *modal.Modal, name string) {
	m.Success("Registration complete!", fmt.Sprintf("Welcome, %s!", name))
}

func NotifyPing(m *modal.Modal, text string) {
	m.Success("Connected to the server!", "Response: "+text)
}

func NotifyLoggedOut(m *modal.Modal) {
	m.Success("Logged out", "You have been logged out.")
}
