package board

import (
	"errors"
	"net/http"

	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/auth"
	"github.com/portal-dev/portal/frontend/internal/modal"
)

// Notify shows a failed post request on m. Missing and foreign posts get their own titles,
// everything else is classified like any other request.
func Notify(m *modal.Modal, err error) {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusNotFound:
			m.Error("Post not found", "This post does not exist or has been deleted.")
			return
		case http.StatusForbidden:
			msg := se.Message
			if msg == "" {
				msg = "Only the author can change this post."
			}
			m.Error("Not allowed", msg)
			return
		}
	}
	auth.Notify(m, auth.OpBoard, err)
}
