package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/jwt"
	"github.com/portal-dev/portal/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockAuthService struct {
	MockRegister func(name string, creds domain.Credentials) (domain.User, string, error)
	MockLogin    func(creds domain.Credentials) (domain.User, string, error)
}

func (m *MockAuthService) Register(name string, creds domain.Credentials) (domain.User, string, error) {
	if m.MockRegister != nil {
		return m.MockRegister(name, creds)
	}
	return domain.User{Id: 1, Email: creds.Email, Name: name}, "token", nil
}

func (m *MockAuthService) Login(creds domain.Credentials) (domain.User, string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(creds)
	}
	return domain.User{Id: 1, Email: creds.Email}, "token", nil
}

type MockPostService struct {
	MockList     func(page, size int) (domain.PostPage, error)
	MockSearch   func(keyword string, page, size int) (domain.PostPage, error)
	MockByAuthor func(user domain.User, page, size int) (domain.PostPage, error)
	MockView     func(id domain.PostId) (domain.Post, error)
	MockCreate   func(user domain.User, title, content string) (domain.Post, error)
	MockUpdate   func(user domain.User, id domain.PostId, title, content string) (domain.Post, error)
	MockDelete   func(user domain.User, id domain.PostId) error
}

func (m *MockPostService) List(page, size int) (domain.PostPage, error) {
	if m.MockList != nil {
		return m.MockList(page, size)
	}
	return domain.NewPostPage(nil, page, 10, 0), nil
}

func (m *MockPostService) Search(keyword string, page, size int) (domain.PostPage, error) {
	if m.MockSearch != nil {
		return m.MockSearch(keyword, page, size)
	}
	return domain.NewPostPage(nil, page, 10, 0), nil
}

func (m *MockPostService) ByAuthor(user domain.User, page, size int) (domain.PostPage, error) {
	if m.MockByAuthor != nil {
		return m.MockByAuthor(user, page, size)
	}
	return domain.NewPostPage(nil, page, 10, 0), nil
}

func (m *MockPostService) View(id domain.PostId) (domain.Post, error) {
	if m.MockView != nil {
		return m.MockView(id)
	}
	return domain.Post{Id: id}, nil
}

func (m *MockPostService) Create(user domain.User, title, content string) (domain.Post, error) {
	if m.MockCreate != nil {
		return m.MockCreate(user, title, content)
	}
	return domain.Post{Id: 1, Title: title, Content: content, AuthorEmail: user.Email}, nil
}

func (m *MockPostService) Update(user domain.User, id domain.PostId, title, content string) (domain.Post, error) {
	if m.MockUpdate != nil {
		return m.MockUpdate(user, id, title, content)
	}
	return domain.Post{Id: id, Title: title, Content: content}, nil
}

func (m *MockPostService) Delete(user domain.User, id domain.PostId) error {
	if m.MockDelete != nil {
		return m.MockDelete(user, id)
	}
	return nil
}

type MockPinger struct {
	err error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.err
}

// --- Helpers ---

var testJwt = jwt.New("test_secret", time.Hour)

func newTestRouter(h *Handler) http.Handler {
	auth := middleware.NewAuth(testJwt)
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/test", h.Test)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Get("/posts", h.ListPosts)
		r.Get("/posts/search", h.SearchPosts)
		r.Get("/posts/{id}", h.GetPost)
		r.Group(func(r chi.Router) {
			r.Use(auth.NeedAuth())
			r.Get("/posts/my", h.MyPosts)
			r.Post("/posts", h.CreatePost)
			r.Put("/posts/{id}", h.UpdatePost)
			r.Delete("/posts/{id}", h.DeletePost)
		})
	})
	return r
}

func createRequest(t *testing.T, method, url string, body []byte, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func mustToken(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := testJwt.NewToken(user)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestHealthAndReady(t *testing.T) {
	pinger := &MockPinger{}
	router := newTestRouter(New(&MockAuthService{}, &MockPostService{}, pinger))

	var body api.HealthResponse

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, createRequest(t, "GET", "/health", nil, ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &body)
	assert.Equal(t, api.HealthResponse{Status: "ok"}, body)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, createRequest(t, "GET", "/ready", nil, ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	body = api.HealthResponse{}
	decodeBody(t, rr, &body)
	assert.Equal(t, api.HealthResponse{Status: "ok", Database: "ok"}, body)

	pinger.err = errors.New("db down")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, createRequest(t, "GET", "/ready", nil, ""))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body = api.HealthResponse{}
	decodeBody(t, rr, &body)
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "unreachable", body.Database)
}

func TestConnectivityProbe(t *testing.T) {
	router := newTestRouter(New(&MockAuthService{}, &MockPostService{}, &MockPinger{}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, createRequest(t, "GET", "/api/auth/test", nil, ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Body.String())
}
