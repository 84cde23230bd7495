package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: &buf})
	logger.WithComponent(ComponentJournal).InfoContext(context.Background(), "hello", FieldSheet, "Matrice")

	out := buf.String()
	if !strings.Contains(out, "component=journal") || !strings.Contains(out, "sheet=Matrice") {
		t.Fatalf("log line = %q", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component must appear once: %q", out)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Component: ComponentApp, Output: &buf}))
	sl.LogSheetSaved(context.Background(), "matrice", "Matrice", 5, true)
	sl.LogError(context.Background(), "Save failed", errors.New("disk full"), ComponentStorage, OpSave, nil)

	out := buf.String()
	for _, want := range []string{"page=matrice", "rows=5", "with_history=true", `error="disk full"`, "operation=save"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		}),
	))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("log = %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("fallback logger expected")
	}
}

func TestToSliceIsSorted(t *testing.T) {
	got := NewFields().WithSheet("Suivi", 9).WithComponent(ComponentApp).ToSlice()
	want := []any{FieldComponent, ComponentApp, FieldRows, 9, FieldSheet, "Suivi"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ToSlice() = %v, want %v", got, want)
		}
	}
}
