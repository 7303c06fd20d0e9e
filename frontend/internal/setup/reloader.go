package setup

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/portal-dev/portal/shared/logger"
)

const reloadDebounce = 200 * time.Millisecond

// templateSink receives a freshly parsed template set.
type templateSink interface {
	SetTemplates(map[string]*template.Template)
}

// startTemplateReloader reparses the templates whenever a file in tmplPath changes.
// A broken edit keeps the previous set in place.
func startTemplateReloader(ctx context.Context, sink templateSink, tmplPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	if err := watcher.Add(tmplPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", tmplPath, err)
	}

	go watchTemplates(ctx, watcher, sink, tmplPath)
	logger.Log.Info("template reloader started", "dir", tmplPath)
	return nil
}

func watchTemplates(ctx context.Context, watcher *fsnotify.Watcher, sink templateSink, tmplPath string) {
	defer watcher.Close()

	// editors write in bursts, reload once they settle
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".html" {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				debounce = time.After(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("template watcher error", "error", err)
		case <-debounce:
			debounce = nil
			templates, err := LoadTemplates(tmplPath)
			if err != nil {
				logger.Log.Error("template reload failed", "error", err)
				continue
			}
			sink.SetTemplates(templates)
			logger.Log.Info("templates reloaded", "count", len(templates))
		}
	}
}
