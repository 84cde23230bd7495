package http

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantNot string
	}{
		{"emphasis", "**entrée** validée", "<strong>entrée</strong>", ""},
		{"hard wraps", "ligne 1\nligne 2", "<br", ""},
		{"link", "voir https://example.com", `href="https://example.com"`, ""},
		{"emoji shortcode", "revenge :fire:", "🔥", ":fire:"},
		{"raw html dropped", "<script>alert(1)</script>", "", "<script>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(renderMarkdown(tt.in))
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("renderMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.wantNot != "" && strings.Contains(got, tt.wantNot) {
				t.Errorf("renderMarkdown(%q) = %q, must not contain %q", tt.in, got, tt.wantNot)
			}
		})
	}
}

func TestFormatEurosTemplateFunc(t *testing.T) {
	fn, ok := templateFuncs["formatEuros"].(func(decimal.Decimal) string)
	if !ok {
		t.Fatalf("formatEuros not registered")
	}
	if got := fn(decimal.RequireFromString("-12.5")); !strings.Contains(got, "12") {
		t.Errorf("formatEuros = %q", got)
	}
}
