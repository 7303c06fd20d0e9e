package handler_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/boarding"
	"github.com/portal-dev/portal/frontend/internal/handler"
	"github.com/portal-dev/portal/frontend/internal/markdown"
	"github.com/portal-dev/portal/frontend/internal/router"
	"github.com/portal-dev/portal/frontend/internal/setup"
	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/config"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const testPassword = "password123"

// --- Fake backend ---

type fakeBackend struct {
	mu          sync.Mutex
	posts       map[int64]domain.Post
	nextID      int64
	calls       map[string]int
	lastKeyword string
	down        bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	fb := &fakeBackend{posts: map[int64]domain.Post{}, nextID: 1, calls: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/test", fb.ping)
	mux.HandleFunc("POST /api/auth/login", fb.login)
	mux.HandleFunc("POST /api/auth/register", fb.register)
	mux.HandleFunc("GET /api/posts", fb.list)
	mux.HandleFunc("GET /api/posts/search", fb.search)
	mux.HandleFunc("GET /api/posts/my", fb.mine)
	mux.HandleFunc("GET /api/posts/{id}", fb.get)
	mux.HandleFunc("POST /api/posts", fb.create)
	mux.HandleFunc("PUT /api/posts/{id}", fb.update)
	mux.HandleFunc("DELETE /api/posts/{id}", fb.remove)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.calls[r.Method+" "+r.URL.Path]++
		down := fb.down
		fb.mu.Unlock()
		if down {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) seed(author domain.Email, title, content string) domain.Post {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC).Add(time.Duration(fb.nextID) * time.Minute)
	p := domain.Post{
		Id:          fb.nextID,
		Title:       title,
		Content:     content,
		AuthorName:  strings.Split(author, "@")[0],
		AuthorEmail: author,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	fb.posts[p.Id] = p
	fb.nextID++
	return p
}

func (fb *fakeBackend) count(call string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[call]
}

func (fb *fakeBackend) has(id int64) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	_, ok := fb.posts[id]
	return ok
}

func bearerEmail(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer tok-")
}

func (fb *fakeBackend) needAuth(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := bearerEmail(r)
	if email == "" || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") {
		utils.WriteJSON(w, http.StatusUnauthorized, api.ErrorResponse{Message: "Authentication required"})
		return "", false
	}
	return email, true
}

func (fb *fakeBackend) ping(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("Backend is up"))
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	_ = utils.Decode(r.Body, &req)
	if req.Password != testPassword {
		utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Success: false, Message: "Invalid email or password."})
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Success: true, Token: "tok-" + req.Email, Email: req.Email})
}

func (fb *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	_ = utils.Decode(r.Body, &req)
	if req.Email == "taken@example.com" {
		utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Success: false, Message: "This email is already registered."})
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Success: true, Token: "tok-" + req.Email, Email: req.Email, Name: req.Name})
}

func (fb *fakeBackend) page(w http.ResponseWriter, r *http.Request, keep func(domain.Post) bool) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	fb.mu.Lock()
	var all []domain.Post
	for _, p := range fb.posts {
		if keep(p) {
			all = append(all, p)
		}
	}
	fb.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Id > all[j].Id })

	start := min(page*size, len(all))
	end := min(start+size, len(all))
	utils.WriteJSON(w, http.StatusOK, domain.NewPostPage(all[start:end], page, size, int64(len(all))))
}

func (fb *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	fb.page(w, r, func(domain.Post) bool { return true })
}

func (fb *fakeBackend) search(w http.ResponseWriter, r *http.Request) {
	kw := strings.ToLower(r.URL.Query().Get("keyword"))
	fb.mu.Lock()
	fb.lastKeyword = r.URL.Query().Get("keyword")
	fb.mu.Unlock()
	fb.page(w, r, func(p domain.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), kw) || strings.Contains(strings.ToLower(p.Content), kw)
	})
}

func (fb *fakeBackend) mine(w http.ResponseWriter, r *http.Request) {
	email, ok := fb.needAuth(w, r)
	if !ok {
		return
	}
	fb.page(w, r, func(p domain.Post) bool { return p.AuthorEmail == email })
}

func (fb *fakeBackend) lookup(w http.ResponseWriter, r *http.Request) (domain.Post, bool) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	fb.mu.Lock()
	p, ok := fb.posts[id]
	fb.mu.Unlock()
	if !ok {
		utils.WriteJSON(w, http.StatusNotFound, api.ErrorResponse{Message: "Post not found"})
	}
	return p, ok
}

func (fb *fakeBackend) get(w http.ResponseWriter, r *http.Request) {
	p, ok := fb.lookup(w, r)
	if !ok {
		return
	}
	fb.mu.Lock()
	p.ViewCount++
	fb.posts[p.Id] = p
	fb.mu.Unlock()
	utils.WriteJSON(w, http.StatusOK, p)
}

func (fb *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	email, ok := fb.needAuth(w, r)
	if !ok {
		return
	}
	var req api.PostRequest
	_ = utils.Decode(r.Body, &req)
	utils.WriteJSON(w, http.StatusCreated, fb.seed(email, req.Title, req.Content))
}

func (fb *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	email, ok := fb.needAuth(w, r)
	if !ok {
		return
	}
	p, ok := fb.lookup(w, r)
	if !ok {
		return
	}
	if p.AuthorEmail != email {
		utils.WriteJSON(w, http.StatusForbidden, api.ErrorResponse{Message: "Only the author can edit this post"})
		return
	}
	var req api.PostRequest
	_ = utils.Decode(r.Body, &req)
	p.Title, p.Content, p.UpdatedAt = req.Title, req.Content, p.UpdatedAt.Add(time.Hour)
	fb.mu.Lock()
	fb.posts[p.Id] = p
	fb.mu.Unlock()
	utils.WriteJSON(w, http.StatusOK, p)
}

func (fb *fakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	email, ok := fb.needAuth(w, r)
	if !ok {
		return
	}
	p, ok := fb.lookup(w, r)
	if !ok {
		return
	}
	if p.AuthorEmail != email {
		utils.WriteJSON(w, http.StatusForbidden, api.ErrorResponse{Message: "Only the author can delete this post"})
		return
	}
	fb.mu.Lock()
	delete(fb.posts, p.Id)
	fb.mu.Unlock()
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Success: true, Message: "Post deleted"})
}

// --- Frontend under test ---

func newFrontend(t *testing.T, backendURL string, cardOpts boarding.Options) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Public.Frontend.APIBaseURL = backendURL + "/api"
	cfg.Public.Frontend.TemplatesDir = "../../templates"
	cfg.Public.Frontend.StaticDir = "../../static"
	cfg.Public.Boarding.TickInterval = 20 * time.Millisecond

	templates, err := setup.LoadTemplates(cfg.Public.Frontend.TemplatesDir)
	require.NoError(t, err)

	cards := boarding.NewRegistry(cardOpts, 0)
	h := handler.New(templates, cfg.Public, markdown.New(), apiclient.New(cfg.Public.Frontend.APIBaseURL, 0), cards)
	deps := &setup.Dependencies{Handler: h, Public: cfg.Public, Cards: cards, CancelFunc: func() {}}

	srv := httptest.NewServer(router.SetupRouter(deps))
	t.Cleanup(srv.Close)
	return srv
}

// browser keeps cookies between requests and never follows redirects.
type browser struct {
	t      *testing.T
	base   *url.URL
	client *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	b := &browser{
		t:    t,
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	// picks up the csrf cookie
	b.get("/login")
	return b
}

type response struct {
	Status   int
	Header   http.Header
	Body     string
	Location string
}

func (b *browser) do(req *http.Request) response {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return response{Status: resp.StatusCode, Header: resp.Header, Body: string(data), Location: resp.Header.Get("Location")}
}

func (b *browser) get(path string) response {
	b.t.Helper()
	req, err := http.NewRequest("GET", b.base.String()+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) cookie(name string) string {
	for _, c := range b.client.Jar.Cookies(b.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *browser) post(path string, form url.Values) response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", b.cookie("csrf_token"))
	req, err := http.NewRequest("POST", b.base.String()+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(email string) {
	b.t.Helper()
	p := b.post("/login", url.Values{"email": {email}, "password": {testPassword}})
	require.Equal(b.t, http.StatusSeeOther, p.Status, p.Body)
	require.Equal(b.t, "/board", p.Location)
}

// --- HTML helpers ---

func parse(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func byClass(doc *html.Node, class string) []*html.Node {
	return findAll(doc, func(n *html.Node) bool { return hasClass(n, class) })
}

// modalTitle is the title of the open modal, "" when none is shown.
func modalTitle(t *testing.T, body string) string {
	t.Helper()
	found := findAll(parse(t, body), func(n *html.Node) bool { return attr(n, "id") == "modal-title" })
	if len(found) == 0 {
		return ""
	}
	return text(found[0])
}

func bodyHasClass(t *testing.T, body, class string) bool {
	t.Helper()
	bodies := findAll(parse(t, body), func(n *html.Node) bool { return n.Data == "body" })
	return len(bodies) == 1 && hasClass(bodies[0], class)
}
