// Package markdown turns post content into safe HTML.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/portal-dev/portal/shared/logger"
)

type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *TextProcessor {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify, extension.Table),
		// posts are written as plain text, so every newline is kept
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextProcessor{md: md, policy: p}
}

// Render converts content to sanitized HTML. Raw HTML in the input is dropped by the
// renderer and anything that survives is filtered by the sanitizer.
func (tp *TextProcessor) Render(content string) template.HTML {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(content), &buf); err != nil {
		logger.Log.Warn("markdown render failed, falling back to escaped text", "error", err)
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(strings.TrimSpace(tp.policy.Sanitize(buf.String())))
}
