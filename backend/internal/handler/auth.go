package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/errors"
	"github.com/portal-dev/portal/shared/utils"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, token, err := h.auth.Register(req.Name, domain.Credentials{Email: req.Email, Password: req.Password})
	writeAuthResult(w, user, token, err)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, token, err := h.auth.Login(domain.Credentials{Email: req.Email, Password: req.Password})
	writeAuthResult(w, user, token, err)
}

// writeAuthResult sends rejections as 200 with success=false so that clients can tell them
// apart from transport and server failures.
func writeAuthResult(w http.ResponseWriter, user domain.User, token string, err error) {
	if err != nil {
		var rej *errors.Rejection
		if stderrors.As(err, &rej) {
			utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Success: false, Message: rej.Message})
			return
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.AuthResponse{
		Success: true,
		Token:   token,
		Email:   user.Email,
		Name:    user.Name,
	})
}
