package frontend_domain

import (
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/domain"
)

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Session    *domain.Session // nil when logged out
	CSRFToken  string
	Modal      modal.State
	Tab        string // active navigation tab: "board" or "boarding"
	Path       string // where closing the modal returns to
	Validation ValidationData
}

func (c CommonTemplateData) LoggedIn() bool {
	return c.Session != nil
}

// ValidationData holds the limits templates echo into form attributes.
type ValidationData struct {
	NameMinLen     int
	PasswordMinLen int
	TitleMaxLen    int
}
