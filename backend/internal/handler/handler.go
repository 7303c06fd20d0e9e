package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/portal-dev/portal/backend/internal/service"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/errors"
	"github.com/portal-dev/portal/shared/middleware"
)

// Pinger reports database reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth   service.AuthService
	post   service.PostService
	health Pinger
}

func New(auth service.AuthService, post service.PostService, health Pinger) *Handler {
	return &Handler{auth: auth, post: post, health: health}
}

// Test is the connectivity probe the clients call before logging in.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Portal API is running"))
}

func postIDParam(r *http.Request) (domain.PostId, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("Invalid post id")
	}
	return id, nil
}

// currentUser is only called behind NeedAuth.
func currentUser(r *http.Request) (domain.User, error) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		return domain.User{}, errors.Unauthorized("Please sign-in")
	}
	return *user, nil
}
