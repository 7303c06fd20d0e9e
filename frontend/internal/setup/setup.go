package setup

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/boarding"
	"github.com/portal-dev/portal/frontend/internal/handler"
	"github.com/portal-dev/portal/frontend/internal/markdown"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/config"
	"github.com/portal-dev/portal/shared/logger"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
	dateTimeLayout   = "2006-01-02 15:04"
)

type Dependencies struct {
	Handler    *handler.Handler
	Public     config.Public
	Cards      *boarding.Registry
	CancelFunc context.CancelFunc
}

// SetupDependencies builds the handler and starts the background tasks: the card janitor
// and, when enabled, the template reloader. CancelFunc stops them.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	ctx, cancel := context.WithCancel(context.Background())

	fcfg := cfg.Public.Frontend
	templates, err := LoadTemplates(fcfg.TemplatesDir)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	apiClient := apiclient.New(fcfg.APIBaseURL, fcfg.RequestTimeout)
	cards := boarding.NewRegistry(boarding.OptionsFromConfig(cfg.Public.Boarding), cfg.Public.Boarding.IdleTimeout)
	go cards.Janitor(ctx, 0)

	h := handler.New(templates, cfg.Public, markdown.New(), apiClient, cards)
	if fcfg.ReloadTemplates {
		if err := startTemplateReloader(ctx, h, fcfg.TemplatesDir); err != nil {
			cancel()
			return nil, err
		}
	}

	return &Dependencies{
		Handler:    h,
		Public:     cfg.Public,
		Cards:      cards,
		CancelFunc: cancel,
	}, nil
}

func sub(a, b int) int { return a - b }
func add(a, b int) int { return a + b }

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateTimeLayout)
}

// modalIcon is the glyph shown in the modal header for each kind.
func modalIcon(k modal.Kind) string {
	switch k {
	case modal.KindSuccess:
		return "✓"
	case modal.KindError:
		return "✕"
	case modal.KindWarning:
		return "!"
	case modal.KindConnection:
		return "⚡"
	default:
		return "i"
	}
}

// lines splits a message so templates can keep its line breaks.
func lines(s string) []string {
	return strings.Split(s, "\n")
}

var funcs = template.FuncMap{
	"sub":        sub,
	"add":        add,
	"dict":       dict,
	"formatTime": formatTime,
	"modalIcon":  modalIcon,
	"lines":      lines,
}

// LoadTemplates parses every page in tmplPath together with the base layout and the partials.
func LoadTemplates(tmplPath string) (map[string]*template.Template, error) {
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate || f.Name() == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFiles(
			path.Join(tmplPath, baseTemplate),
			path.Join(tmplPath, f.Name()),
			path.Join(tmplPath, partialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", f.Name(), err)
		}
		templates[f.Name()] = tmpl
	}
	logger.Log.Debug("templates loaded", "count", len(templates), "dir", tmplPath)
	return templates, nil
}
