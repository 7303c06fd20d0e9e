package handler

import (
	"net/http"

	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/utils"
)

func pageParams(r *http.Request) (page, size int, err error) {
	if page, err = utils.QueryInt(r, "page", 0); err != nil {
		return 0, 0, err
	}
	if size, err = utils.QueryInt(r, "size", 0); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	result, err := h.post.List(page, size)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	result, err := h.post.Search(r.URL.Query().Get("keyword"), page, size)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	page, size, err := pageParams(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	result, err := h.post.ByAuthor(user, page, size)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := postIDParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	post, err := h.post.View(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var req api.PostRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	post, err := h.post.Create(user, req.Title, req.Content)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := postIDParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var req api.PostRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	post, err := h.post.Update(user, id, req.Title, req.Content)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	id, err := postIDParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.post.Delete(user, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Success: true, Message: "Post deleted"})
}
