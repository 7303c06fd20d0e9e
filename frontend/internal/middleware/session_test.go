package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/frontend/internal/session"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSession(req *http.Request, s domain.Session) *http.Request {
	rr := httptest.NewRecorder()
	_ = session.NewCookieStore(rr, req, false).Save(s)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRequireSession(t *testing.T) {
	reached := false
	chain := LoadSession(false)(RequireSession(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		sess := SessionFromContext(r)
		require.NotNil(t, sess)
		assert.Equal(t, "a@b.com", sess.Email)
	})))

	t.Run("logged out goes to login", func(t *testing.T) {
		reached = false
		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, httptest.NewRequest("GET", "/board", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))

		var modalCookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == modal.CookieName {
				modalCookie = c
			}
		}
		require.NotNil(t, modalCookie)
		st, err := modal.Decode(modalCookie.Value)
		require.NoError(t, err)
		assert.Equal(t, modal.KindWarning, st.Kind)
	})

	t.Run("logged in passes", func(t *testing.T) {
		reached = false
		req := withSession(httptest.NewRequest("GET", "/board", nil), domain.Session{Token: "t", Email: "a@b.com"})
		rr := httptest.NewRecorder()
		chain.ServeHTTP(rr, req)
		assert.True(t, reached)
	})
}

func TestBrowserID(t *testing.T) {
	var id string
	handler := BrowserID(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = BrowserIDFromContext(r)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	require.NotEmpty(t, id)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, id, cookies[0].Value)

	first := id
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, first, id)
	assert.Empty(t, rr.Result().Cookies())

	forged := httptest.NewRequest("GET", "/", nil)
	forged.AddCookie(&http.Cookie{Name: browserCookieName, Value: "not-a-uuid"})
	handler.ServeHTTP(httptest.NewRecorder(), forged)
	assert.NotEqual(t, "not-a-uuid", id)
}
