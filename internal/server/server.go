// Package server serves vibe's HTTP API: web sign-in, the signed-in
// account's playlists and videos, and the vibe taxonomy.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tessro/vibe/internal/auth"
	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/store"
	"github.com/tessro/vibe/internal/youtube"
)

const (
	// SessionCookie names the cookie holding the server session id.
	SessionCookie = "vibe_session"

	// CallbackPath is where Google redirects after consent.
	CallbackPath = "/auth/callback"

	shutdownTimeout = 10 * time.Second
)

// SourceFactory builds a catalog source that authenticates with ts.
type SourceFactory func(ctx context.Context, ts oauth2.TokenSource) core.CatalogSource

// Config holds HTTP server settings.
type Config struct {
	Addr       string
	BaseURL    string
	SessionTTL time.Duration
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int
}

// Option configures a Server.
type Option func(*Server)

// WithSourceFactory overrides how catalog sources are built.
func WithSourceFactory(f SourceFactory) Option {
	return func(s *Server) { s.sources = f }
}

// WithLogger sets the server logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server is the vibe HTTP server.
type Server struct {
	cfg      Config
	oauth    *auth.Config
	sessions *store.Sessions
	sources  SourceFactory
	logger   zerolog.Logger
	router   chi.Router
}

// New creates a server. oauth's redirect URI is set to BaseURL+CallbackPath.
func New(cfg Config, oauth *auth.Config, sessions *store.Sessions, opts ...Option) *Server {
	redirect := *oauth
	redirect.RedirectURI = strings.TrimRight(cfg.BaseURL, "/") + CallbackPath

	s := &Server{
		cfg:      cfg,
		oauth:    &redirect,
		sessions: sessions,
		sources: func(ctx context.Context, ts oauth2.TokenSource) core.CatalogSource {
			return youtube.NewWithTokenSource(ctx, ts)
		},
		logger: log.WithComponent("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(requestID)
	r.Use(instrument)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(rateLimit(s.cfg.RateLimit, time.Minute))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.handleLogin)
			r.Get("/callback", s.handleCallback)
			r.Post("/logout", s.handleLogout)
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/vibes", s.handleVibes)
			r.Get("/vibes/classify", s.handleClassify)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Get("/youtube/playlists", s.handlePlaylists)
				r.Get("/youtube/uploads", s.handleUploads)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex is where sign-in lands. It reports whether the caller has a
// live session and where to sign in otherwise.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	signedIn := false
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if _, err := s.sessions.Get(r.Context(), cookie.Value); err == nil {
			signedIn = true
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"signedIn": signedIn,
		"login":    "/auth/login",
	})
}
