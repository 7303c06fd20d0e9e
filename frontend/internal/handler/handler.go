package handler

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/auth"
	"github.com/portal-dev/portal/frontend/internal/boarding"
	"github.com/portal-dev/portal/frontend/internal/markdown"
	"github.com/portal-dev/portal/shared/config"
)

type Handler struct {
	mu        sync.RWMutex
	templates map[string]*template.Template

	Public        config.Public
	TextProcessor *markdown.TextProcessor
	APIClient     *apiclient.APIClient
	Auth          *auth.Flow
	Cards         *boarding.Registry

	upgrader websocket.Upgrader
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *markdown.TextProcessor, apiClient *apiclient.APIClient, cards *boarding.Registry) *Handler {
	return &Handler{
		templates:     templates,
		Public:        publicCfg,
		TextProcessor: textProcessor,
		APIClient:     apiClient,
		Auth:          auth.NewFlow(apiClient),
		Cards:         cards,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// SetTemplates swaps the template set, used by the reloader.
func (h *Handler) SetTemplates(templates map[string]*template.Template) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.templates = templates
}

func (h *Handler) getTemplate(name string) (*template.Template, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	tmpl, ok := h.templates[name]
	return tmpl, ok
}

func (h *Handler) secure() bool {
	return h.Public.Frontend.SecureCookies
}

func FaviconHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, staticDir+"/favicon.svg")
	}
}
