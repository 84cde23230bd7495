package http

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"tradejournal/internal/pages"
)

// markdownRenderer renders fiche fields. Raw HTML in the source is
// omitted; :shortcodes: become emoji.
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.Linkify,
		extension.Strikethrough,
		emoji.New(emoji.WithRenderingMethod(emoji.Unicode)),
	),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMarkdown converts s to HTML; on failure the text is shown escaped.
func renderMarkdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(s), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(s) + "</p>")
	}
	return template.HTML(buf.String())
}

// formatEuros formats an amount for display (e.g., "€1,234.50").
func formatEuros(d decimal.Decimal) string {
	return pages.FormatEuros(d)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// templateFuncs are available in every page template.
var templateFuncs = template.FuncMap{
	"formatEuros": formatEuros,
	"markdown":    renderMarkdown,
	"cellField":   cellField,
	"add":         func(a, b int) int { return a + b },
}
