package modal

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowDefaults(t *testing.T) {
	m := New()
	assert.False(t, m.IsOpen())

	m.Show(Options{Title: "Hello", Message: "World"})
	s := m.State()
	assert.True(t, s.Open)
	assert.Equal(t, KindInfo, s.Kind)
	assert.Equal(t, "OK", s.ConfirmText)
	assert.Equal(t, "Cancel", s.CancelText)
	assert.False(t, s.ShowConfirm)
}

func TestWrappers(t *testing.T) {
	tests := []struct {
		name string
		show func(m *Modal)
		kind Kind
	}{
		{"success", func(m *Modal) { m.Success("t", "m") }, KindSuccess},
		{"error", func(m *Modal) { m.Error("t", "m") }, KindError},
		{"warning", func(m *Modal) { m.Warning("t", "m") }, KindWarning},
		{"connection", func(m *Modal) { m.Connection("t", "m") }, KindConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			tt.show(m)
			assert.Equal(t, tt.kind, m.State().Kind)
			assert.True(t, m.IsOpen())
			assert.False(t, m.State().ShowConfirm)
		})
	}
}

func TestLastShowWins(t *testing.T) {
	m := New()
	m.Confirm("Delete", "Sure?", DeletePost(4, ""))
	m.Error("Oops", "Server error")

	s := m.State()
	assert.Equal(t, "Oops", s.Title)
	assert.Equal(t, KindError, s.Kind)
	assert.False(t, s.ShowConfirm)
	assert.True(t, s.OnConfirm.IsNone())
}

func TestCloseKeepsText(t *testing.T) {
	m := New()
	m.Success("Saved", "Post saved")
	m.Close()

	s := m.State()
	assert.False(t, s.Open)
	assert.Equal(t, "Saved", s.Title)
	assert.Equal(t, "Post saved", s.Message)
}

func TestConfirmAction(t *testing.T) {
	t.Run("confirm dispatches once", func(t *testing.T) {
		m := New()
		m.Confirm("Delete", "Sure?", DeletePost(7, "bus"))
		assert.Equal(t, KindWarning, m.State().Kind)
		assert.True(t, m.State().ShowConfirm)

		action, ok := m.ConfirmAction()
		require.True(t, ok)
		assert.Equal(t, Action{Kind: ActionDeletePost, PostID: 7, Keyword: "bus"}, action)
		assert.False(t, m.IsOpen())

		_, ok = m.ConfirmAction()
		assert.False(t, ok)
	})

	t.Run("cancel drops the action", func(t *testing.T) {
		m := New()
		m.Confirm("Delete", "Sure?", DeletePost(7, ""))
		m.Close()
		_, ok := m.ConfirmAction()
		assert.False(t, ok)
	})

	t.Run("plain modal has nothing to confirm", func(t *testing.T) {
		m := New()
		m.Show(Options{Title: "x", OnConfirm: DeletePost(1, "")})
		_, ok := m.ConfirmAction()
		assert.False(t, ok)
		assert.False(t, m.IsOpen())
	})
}

func TestCodec(t *testing.T) {
	m := New()
	m.Confirm("Delete post", "This can't be undone.", DeletePost(12, "route 5"))

	raw, err := Encode(m.State())
	require.NoError(t, err)
	assert.NotContains(t, raw, ";")
	assert.NotContains(t, raw, " ")

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, m.State(), got)

	_, err = Decode("%%%")
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, State{}))
	assert.Empty(t, buf.String())

	m := New()
	m.Connection("Cannot reach server", "Is the API running?\nCheck PORTAL_API_URL.")
	require.NoError(t, WriteText(&buf, m.State()))
	assert.Equal(t, "[~] Cannot reach server\n    Is the API running?\n    Check PORTAL_API_URL.\n", buf.String())
}

func TestCookie(t *testing.T) {
	m := New()
	m.Confirm("Delete post", "Sure?", DeletePost(3, ""))

	rr := httptest.NewRecorder()
	WriteCookie(rr, m.State(), true)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	got, ok := ReadCookie(req)
	require.True(t, ok)
	assert.Equal(t, m.State(), got)

	bad := httptest.NewRequest("GET", "/", nil)
	bad.AddCookie(&http.Cookie{Name: CookieName, Value: "!!"})
	_, ok = ReadCookie(bad)
	assert.False(t, ok)

	_, ok = ReadCookie(httptest.NewRequest("GET", "/", nil))
	assert.False(t, ok)
}
