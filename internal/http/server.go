package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	applog "tradejournal/internal/log"
	"tradejournal/internal/middleware/ratelimit"
	"tradejournal/internal/middleware/security"
	"tradejournal/internal/middleware/trace"
	"tradejournal/internal/services"
	appweb "tradejournal/web"
)

// Options carries the services behind the journal pages.
type Options struct {
	Store    *services.TableStore
	Sessions *services.SessionService
	Fiches   *services.FicheArchive
	Captures *services.CaptureStore
	Settings *services.CEOSettings

	// Ready probes the sheet backend for /readyz. Nil means always ready.
	Ready func(context.Context) error

	Logger    *applog.Logger
	RateLimit ratelimit.Config
}

type Server struct {
	http.Server
	templates *template.Template

	store    *services.TableStore
	sessions *services.SessionService
	fiches   *services.FicheArchive
	captures *services.CaptureStore
	settings *services.CEOSettings
	ready    func(context.Context) error

	logger  *applog.Logger
	events  *applog.StructuredLogger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	now     func() time.Time
	started time.Time

	stopLimiter  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	ips := security.NewClientIP()
	s := &Server{
		store:    opts.Store,
		sessions: opts.Sessions,
		fiches:   opts.Fiches,
		captures: opts.Captures,
		settings: opts.Settings,
		ready:    opts.Ready,
		logger:   logger,
		events:   applog.NewStructuredLogger(logger.WithComponent(applog.ComponentJournal)),
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		tracer:   trace.NewMiddleware(ips.Extract),
		now:      time.Now,
		started:  time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("journal").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Dashboard and session log
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /sessions", s.handleRecordSession)
	mux.HandleFunc("POST /ceo", s.handleSaveCEO)
	mux.HandleFunc("GET /captures/{path...}", s.handleCapture)

	// Charts
	mux.Handle("GET /charts/trend.svg", security.NoStore(http.HandlerFunc(s.handleTrendSVG)))
	mux.Handle("GET /charts/trend.png", security.NoStore(http.HandlerFunc(s.handleTrendPNG)))
	mux.Handle("GET /charts/calendar.svg", security.NoStore(http.HandlerFunc(s.handleCalendarSVG)))
	mux.Handle("GET /charts/calendar.png", security.NoStore(http.HandlerFunc(s.handleCalendarPNG)))
	mux.HandleFunc("GET /stats", s.handleStats)

	// Editable pages
	mux.HandleFunc("GET /pages", s.handlePageIndex)
	mux.HandleFunc("GET /pages/{slug}", s.handlePage)
	mux.HandleFunc("GET /pages/{slug}/history", s.handlePageHistory)
	mux.HandleFunc("POST /pages/{slug}", s.handleSavePage)
	mux.HandleFunc("POST /pages/{slug}/edit", s.handleEditPage)
	mux.HandleFunc("POST /pages/{slug}/rows", s.handleAddRow)
	mux.HandleFunc("POST /pages/{slug}/rows/{row}/delete", s.handleDeleteRow)

	// Fiches
	mux.HandleFunc("GET /fiches", s.handleFiches)
	mux.HandleFunc("GET /fiches/new", s.handleNewFiche)
	mux.HandleFunc("POST /fiches", s.handleCreateFiche)
	mux.HandleFunc("GET /fiches/image/{path...}", s.handleFicheImage)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).
			WarnContext(r.Context(), "Rate limit exceeded", applog.FieldClientIP, ips.Extract(r), applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Trop de requêtes, réessayez dans une minute.").
			Header("Retry-After", "60").
			Write(w)
	}

	// Outermost first: logger, trace, request-scoped logger, headers, limiter.
	var handler http.Handler = mux
	handler = s.limiter.Middleware(ips.Extract, onLimit)(handler)
	handler = headers.Middleware(handler)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	ctx, cancel := context.WithCancel(context.Background())
	s.stopLimiter = cancel
	go s.limiter.Run(ctx)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopLimiter != nil {
			s.stopLimiter()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a full page template. Output is buffered so that a
// failing template yields a clean 500 instead of half a page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed", "template", name, applog.FieldError, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// fragment executes a partial template into an HTMX response builder.
func (s *Server) fragment(r *http.Request, name string, data any) (*HTMXResponseBuilder, bool) {
	if s.templates == nil {
		return InternalServerError("Modèles indisponibles"), false
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Fragment execution failed", "template", name, applog.FieldError, err)
		return InternalServerError("Erreur d'affichage"), false
	}
	return NewHTMXResponse().BodyHTML(buf.String()), true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the sheet backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]interface{}{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.store == nil:
		checks["backend"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	case s.ready == nil:
		checks["backend"] = "ok"
	default:
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(ctx, "Backend not ready", "error", err)
			checks["backend"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]interface{}{"active_clients": s.limiter.ActiveClients()}
	checks["requests"] = s.tracer.Total()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}
