package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "tradejournal/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Component: applog.ComponentHTTP, Output: &buf})

	var seen string
	m := NewMiddleware(func(*http.Request) string { return "127.0.0.1" })
	h := applog.Middleware(logger)(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusUnprocessableEntity)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pages/matrice/edit", nil))

	if !strings.HasPrefix(seen, "req_") || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("request id = %q, header = %q", seen, rec.Header().Get("X-Request-ID"))
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=422", "path=/pages/matrice/edit", "client_ip=127.0.0.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
	if m.Total() != 1 {
		t.Fatalf("total = %d", m.Total())
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	m := NewMiddleware(nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "upstream-1" {
		t.Fatalf("X-Request-ID = %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	if GenerateRequestID() == GenerateRequestID() {
		t.Fatal("ids must differ")
	}
}
