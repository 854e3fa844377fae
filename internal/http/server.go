package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"casalgastos/internal/auth"
	applog "casalgastos/internal/log"
	"casalgastos/internal/session"
	appweb "casalgastos/web"
)

// Pinger reports whether the data backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the HTTP surface.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	SecureCookies      bool
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Sessions *session.Manager
	Verifier *auth.Verifier
	Backend  Pinger
	Logger   *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	sessions  *session.Manager
	verifier  *auth.Verifier
	backend   Pinger
	limiter   *rateLimiter
	metrics   *appMetrics
	logger    *applog.Logger
	events    *applog.StructuredLogger
	secure    bool
	now       func() time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires the routes.
func NewServer(opts Options, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		templates: t,
		sessions:  deps.Sessions,
		verifier:  deps.Verifier,
		backend:   deps.Backend,
		limiter:   newRateLimiter(opts.RateLimitPerMinute),
		metrics:   newAppMetrics(),
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
		secure:    opts.SecureCookies,
		now:       time.Now,
	}
	s.Handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(applog.Middleware(s.logger))
	r.Use(applog.RequestIDMiddleware(func(r *http.Request) string { return chimw.GetReqID(r.Context()) }))
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(s.securityHeaders)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Handle("/static/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Post("/session", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/app", s.handleApp)
		r.Post("/app/refresh", s.handleRefresh)
		r.Post("/transactions", s.handleAddTransaction)
		r.Post("/transactions/{id}/delete", s.handleDeleteTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
	})
	return r
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.metrics.requests.Add(1)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogHTTPEnd(r.Context(), r, status, time.Since(start).Milliseconds(), extractClientIP(r))
	})
}
