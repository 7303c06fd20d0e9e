package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/board"
	frontend_domain "github.com/portal-dev/portal/frontend/internal/domain"
	"github.com/portal-dev/portal/frontend/internal/middleware"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/logger"
	"github.com/portal-dev/portal/shared/validation"
)

const boardTab = "board"

// tokens is the bearer token of the logged-in visitor. Anonymous calls send an empty one.
func tokens(r *http.Request) apiclient.TokenSource {
	if sess := middleware.SessionFromContext(r); sess != nil {
		return apiclient.StaticToken(sess.Token)
	}
	return apiclient.StaticToken("")
}

func parsePostID(r *http.Request) (domain.PostId, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

// postURL is the detail page of id, remembering the search it was opened from.
func postURL(id domain.PostId, keyword string) string {
	u := fmt.Sprintf("/board/%d", id)
	if keyword != "" {
		u += "?keyword=" + url.QueryEscape(keyword)
	}
	return u
}

// sessionExpired sends the visitor back to login when the backend no longer accepts the token.
func (h *Handler) sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apiclient.IsStatus(err, http.StatusUnauthorized) {
		return false
	}
	middleware.RedirectToLogin(w, r, h.secure(), "Your session has expired. Please log in again.")
	return true
}

func (h *Handler) boardPageData(page domain.PostPage, q board.Query, mine bool) frontend_domain.BoardPageData {
	cfg := h.Public.Board
	data := frontend_domain.BoardPageData{
		Heading:     "Board",
		Query:       q,
		Pagination:  board.Paginate(page.CurrentPage, page.TotalPages, cfg.PageButtons),
		ResultCount: page.TotalElements,
		Mine:        mine,
	}
	switch {
	case mine:
		data.Heading = "My posts"
	case q.Searching():
		data.Heading = fmt.Sprintf("Search results for %q", q.Keyword)
	}
	for i, p := range page.Posts {
		data.Rows = append(data.Rows, frontend_domain.PostRow{
			Number: board.RowNumber(page.CurrentPage, cfg.PageSize, i),
			Title:  board.Truncate(p.Title, cfg.TitlePreviewLen),
			Post:   p,
		})
	}
	return data
}

// BoardGetHandler lists posts, or the search results when a keyword is set.
func (h *Handler) BoardGetHandler(w http.ResponseWriter, r *http.Request) {
	q := board.ParseQuery(r.URL.Query())
	size := h.Public.Board.PageSize

	var (
		page domain.PostPage
		err  error
	)
	if q.Searching() {
		page, err = h.APIClient.SearchPosts(r.Context(), tokens(r), q.Keyword, q.Page, size)
	} else {
		page, err = h.APIClient.ListPosts(r.Context(), tokens(r), q.Page, size)
	}
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		logger.Log.Error("loading board", "keyword", q.Keyword, "page", q.Page, "error", err)
		m := modal.New()
		board.Notify(m, err)
		h.renderTemplateWithModal(w, r, "board.html", boardTab, h.boardPageData(domain.PostPage{CurrentPage: q.Page}, q, false), m)
		return
	}

	h.renderTemplate(w, r, "board.html", boardTab, h.boardPageData(page, q, false))
}

func (h *Handler) MyPostsGetHandler(w http.ResponseWriter, r *http.Request) {
	q := board.ParseQuery(r.URL.Query())
	q.Keyword = ""

	page, err := h.APIClient.MyPosts(r.Context(), tokens(r), q.Page, h.Public.Board.PageSize)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		logger.Log.Error("loading own posts", "page", q.Page, "error", err)
		m := modal.New()
		board.Notify(m, err)
		h.renderTemplateWithModal(w, r, "board.html", boardTab, h.boardPageData(domain.PostPage{CurrentPage: q.Page}, q, true), m)
		return
	}

	h.renderTemplate(w, r, "board.html", boardTab, h.boardPageData(page, q, true))
}

func (h *Handler) PostGetHandler(w http.ResponseWriter, r *http.Request) {
	q := board.ParseQuery(r.URL.Query())
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := h.APIClient.GetPost(r.Context(), tokens(r), id)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		logger.Log.Info("loading post", "id", id, "error", err)
		m := modal.New()
		board.Notify(m, err)
		h.redirectWithModal(w, r, q.URL(), m)
		return
	}

	var sess domain.Session
	if s := middleware.SessionFromContext(r); s != nil {
		sess = *s
	}
	h.renderTemplate(w, r, "post.html", boardTab, frontend_domain.PostPageData{
		Post:     post,
		Content:  h.TextProcessor.Render(post.Content),
		IsAuthor: board.IsAuthor(post, sess),
		BackURL:  q.URL(),
		Keyword:  q.Keyword,
	})
}

func (h *Handler) NewPostGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "post_form.html", boardTab, frontend_domain.PostFormPageData{
		Keyword: strings.TrimSpace(r.URL.Query().Get("keyword")),
	})
}

func readPostForm(r *http.Request) (validation.Post, string) {
	form := validation.Post{Title: r.FormValue("title"), Content: r.FormValue("content")}
	return form, strings.TrimSpace(r.FormValue("keyword"))
}

// NewPostPostHandler publishes the post and goes back to the first list page.
func (h *Handler) NewPostPostHandler(w http.ResponseWriter, r *http.Request) {
	form, keyword := readPostForm(r)
	data := frontend_domain.PostFormPageData{Title: form.Title, Content: form.Content, Keyword: keyword}

	if fe := validation.ValidatePost(form); !fe.Empty() {
		data.Errors = fe
		h.renderTemplate(w, r, "post_form.html", boardTab, data)
		return
	}

	form = validation.NormalizePost(form)
	if _, err := h.APIClient.CreatePost(r.Context(), tokens(r), form.Title, form.Content); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		logger.Log.Error("creating post", "error", err)
		m := modal.New()
		board.Notify(m, err)
		h.renderTemplateWithModal(w, r, "post_form.html", boardTab, data, m)
		return
	}

	m := modal.New()
	m.Success("Post published", "Your post is now on the board.")
	h.redirectWithModal(w, r, board.Query{Keyword: keyword}.URL(), m)
}

func (h *Handler) EditPostGetHandler(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := h.APIClient.GetPost(r.Context(), tokens(r), id)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		m := modal.New()
		board.Notify(m, err)
		h.redirectWithModal(w, r, board.Query{Keyword: keyword}.URL(), m)
		return
	}

	sess := middleware.SessionFromContext(r)
	if sess == nil || !board.IsAuthor(post, *sess) {
		m := modal.New()
		m.Error("Not allowed", "Only the author can edit this post.")
		h.redirectWithModal(w, r, postURL(id, keyword), m)
		return
	}

	h.renderTemplate(w, r, "post_form.html", boardTab, frontend_domain.PostFormPageData{
		Editing: true,
		PostID:  id,
		Title:   post.Title,
		Content: post.Content,
		Keyword: keyword,
	})
}

// EditPostPostHandler saves the changes and shows the updated post.
func (h *Handler) EditPostPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form, keyword := readPostForm(r)
	data := frontend_domain.PostFormPageData{Editing: true, PostID: id, Title: form.Title, Content: form.Content, Keyword: keyword}

	if fe := validation.ValidatePost(form); !fe.Empty() {
		data.Errors = fe
		h.renderTemplate(w, r, "post_form.html", boardTab, data)
		return
	}

	form = validation.NormalizePost(form)
	if _, err := h.APIClient.UpdatePost(r.Context(), tokens(r), id, form.Title, form.Content); err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		logger.Log.Info("updating post", "id", id, "error", err)
		m := modal.New()
		board.Notify(m, err)
		h.renderTemplateWithModal(w, r, "post_form.html", boardTab, data, m)
		return
	}

	m := modal.New()
	m.Success("Post updated", "Your changes have been saved.")
	h.redirectWithModal(w, r, postURL(id, keyword), m)
}

// DeletePostPostHandler only asks for confirmation. The delete itself runs from
// ModalConfirmHandler.
func (h *Handler) DeletePostPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	keyword := strings.TrimSpace(r.FormValue("keyword"))

	m := modal.New()
	m.Confirm("Delete post", "Are you sure you want to delete this post?\nThis cannot be undone.", modal.DeletePost(id, keyword))
	h.redirectWithModal(w, r, postURL(id, keyword), m)
}

// deletePost runs a confirmed delete. The action comes back from the client cookie, so
// authorship is checked again against the current post.
func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request, action modal.Action) {
	sess := middleware.SessionFromContext(r)
	if sess == nil {
		middleware.RedirectToLogin(w, r, h.secure(), "Please log in to continue.")
		return
	}

	failed := func(err error) {
		if h.sessionExpired(w, r, err) {
			return
		}
		logger.Log.Info("deleting post", "id", action.PostID, "error", err)
		m := modal.New()
		board.Notify(m, err)
		h.redirectWithModal(w, r, postURL(action.PostID, action.Keyword), m)
	}

	post, err := h.APIClient.GetPost(r.Context(), tokens(r), action.PostID)
	if err != nil {
		failed(err)
		return
	}
	if !board.IsAuthor(post, *sess) {
		m := modal.New()
		m.Error("Not allowed", "Only the author can delete this post.")
		h.redirectWithModal(w, r, postURL(action.PostID, action.Keyword), m)
		return
	}

	if err := h.APIClient.DeletePost(r.Context(), tokens(r), action.PostID); err != nil {
		failed(err)
		return
	}

	m := modal.New()
	m.Success("Post deleted", "The post has been deleted.")
	h.redirectWithModal(w, r, board.Query{Keyword: action.Keyword}.URL(), m)
}
