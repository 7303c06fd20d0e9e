package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/portal-dev/portal/frontend/internal/boarding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginFlow(t *testing.T) {
	fb, backend := newFakeBackend(t)
	b := newBrowser(t, newFrontend(t, backend.URL, boarding.Options{}))

	t.Run("logged out visitors are sent to login", func(t *testing.T) {
		p := b.get("/board")
		assert.Equal(t, http.StatusSeeOther, p.Status)
		assert.Equal(t, "/login", p.Location)

		p = b.get("/login")
		assert.Equal(t, "Login required", modalTitle(t, p.Body))
	})

	t.Run("empty password never reaches the backend", func(t *testing.T) {
		p := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {""}})
		assert.Equal(t, http.StatusOK, p.Status)
		assert.Equal(t, "Input error", modalTitle(t, p.Body))
		assert.Zero(t, fb.count("POST /api/auth/login"))
	})

	t.Run("rejection shows the server message", func(t *testing.T) {
		p := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusOK, p.Status)
		assert.Equal(t, "Login failed", modalTitle(t, p.Body))
		assert.Contains(t, p.Body, "Invalid email or password.")
		assert.True(t, bodyHasClass(t, p.Body, "modal-open"))
		// the email is kept in the form
		assert.Contains(t, p.Body, `value="a@example.com"`)
	})

	t.Run("success stores the session and greets once", func(t *testing.T) {
		b.login("a@example.com")
		assert.Equal(t, "tok-a@example.com", b.cookie("auth_token"))

		p := b.get("/board")
		require.Equal(t, http.StatusOK, p.Status)
		assert.Equal(t, "Login successful!", modalTitle(t, p.Body))
		assert.Contains(t, p.Body, "a@example.com")

		p = b.get("/board")
		assert.Empty(t, modalTitle(t, p.Body))
		assert.False(t, bodyHasClass(t, p.Body, "modal-open"))
	})

	t.Run("login page skips ahead when logged in", func(t *testing.T) {
		p := b.get("/login")
		assert.Equal(t, http.StatusSeeOther, p.Status)
		assert.Equal(t, "/board", p.Location)
	})

	t.Run("logout", func(t *testing.T) {
		p := b.post("/logout", nil)
		assert.Equal(t, http.StatusSeeOther, p.Status)
		assert.Equal(t, "/login", p.Location)
		assert.Empty(t, b.cookie("auth_token"))

		p = b.get("/login")
		assert.Equal(t, "Logged out", modalTitle(t, p.Body))

		p = b.get("/board")
		assert.Equal(t, http.StatusSeeOther, p.Status)
	})
}

func TestLoginFailureKinds(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		fb, backend := newFakeBackend(t)
		b := newBrowser(t, newFrontend(t, backend.URL, boarding.Options{}))
		fb.mu.Lock()
		fb.down = true
		fb.mu.Unlock()

		p := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {testPassword}})
		assert.Equal(t, "Server error", modalTitle(t, p.Body))
	})

	t.Run("unreachable backend", func(t *testing.T) {
		gone := httptest.NewServer(http.NotFoundHandler())
		gone.Close()
		b := newBrowser(t, newFrontend(t, gone.URL, boarding.Options{}))

		p := b.post("/login", url.Values{"email": {"a@example.com"}, "password": {testPassword}})
		assert.Equal(t, "Cannot reach the server", modalTitle(t, p.Body))
		assert.Contains(t, p.Body, "modal-connection")
	})
}

func TestPing(t *testing.T) {
	_, backend := newFakeBackend(t)
	b := newBrowser(t, newFrontend(t, backend.URL, boarding.Options{}))

	p := b.post("/ping", nil)
	assert.Equal(t, http.StatusSeeOther, p.Status)

	p = b.get("/login")
	assert.Equal(t, "Connected to the server!", modalTitle(t, p.Body))
	assert.Contains(t, p.Body, "Backend is up")
}

func TestRegister(t *testing.T) {
	fb, backend := newFakeBackend(t)
	srv := newFrontend(t, backend.URL, boarding.Options{})

	t.Run("field errors are shown inline", func(t *testing.T) {
		b := newBrowser(t, srv)
		p := b.post("/register", url.Values{
			"email":           {"not-an-email"},
			"name":            {"J"},
			"password":        {"abcdef"},
			"confirmPassword": {"abcdeg"},
		})
		require.Equal(t, http.StatusOK, p.Status)
		assert.Empty(t, modalTitle(t, p.Body))

		var msgs []string
		for _, n := range byClass(parse(t, p.Body), "field-error") {
			msgs = append(msgs, text(n))
		}
		assert.ElementsMatch(t, []string{
			"Email address is not valid.",
			"Name must be at least 2 characters.",
			"Passwords do not match.",
		}, msgs)
		assert.Zero(t, fb.count("POST /api/auth/register"))
		// passwords are never echoed back
		assert.NotContains(t, p.Body, `value="abcdef"`)
	})

	t.Run("taken email", func(t *testing.T) {
		b := newBrowser(t, srv)
		p := b.post("/register", url.Values{
			"email":           {"taken@example.com"},
			"name":            {"Jo"},
			"password":        {"abcdef"},
			"confirmPassword": {"abcdef"},
		})
		assert.Equal(t, "Registration failed", modalTitle(t, p.Body))
		assert.Contains(t, p.Body, "This email is already registered.")
	})

	t.Run("success logs in", func(t *testing.T) {
		b := newBrowser(t, srv)
		p := b.post("/register", url.Values{
			"email":           {"new@example.com"},
			"name":            {"Jo"},
			"password":        {"abcdef"},
			"confirmPassword": {"abcdef"},
		})
		require.Equal(t, http.StatusSeeOther, p.Status)
		assert.Equal(t, "/board", p.Location)

		p = b.get("/board")
		assert.Equal(t, "Registration complete!", modalTitle(t, p.Body))
		assert.True(t, strings.Contains(p.Body, "Welcome, Jo!"))
	})
}

func TestPostsWithoutCSRFTokenAreRejected(t *testing.T) {
	_, backend := newFakeBackend(t)
	srv := newFrontend(t, backend.URL, boarding.Options{})

	resp, err := http.PostForm(srv.URL+"/login", url.Values{"email": {"a@example.com"}, "password": {testPassword}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
