package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/server"
	"github.com/tessro/vibe/internal/store"
	"github.com/tessro/vibe/internal/youtube"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API: Google sign-in at /auth/login, the signed-in
account's playlists and videos under /api/youtube, the vibe taxonomy at
/api/vibes, /healthz and Prometheus metrics at /metrics.

Web sessions are kept in the backend chosen by server.session_backend
(memory, sqlite or redis).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oauth, err := oauthConfig()
	if err != nil {
		return err
	}

	logger := log.WithComponent("server")
	kv, err := store.New(cfg.Server, logger)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	ttl := time.Duration(cfg.Server.SessionTTL) * time.Second
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(server.Config{
		Addr:       addr,
		BaseURL:    cfg.Server.BaseURL,
		SessionTTL: ttl,
		RateLimit:  cfg.Server.RateLimit,
	}, oauth, store.NewSessions(kv, ttl),
		server.WithLogger(logger),
		server.WithSourceFactory(func(ctx context.Context, ts oauth2.TokenSource) core.CatalogSource {
			return youtube.NewWithTokenSource(ctx, ts, youtubeOptions()...)
		}),
	)

	logger.Info().Str("backend", cfg.Server.SessionBackend).Msg("session store ready")
	if !JSONOutput() {
		fmt.Printf("Listening on %s (sign in at %s/auth/login)\n", addr, cfg.Server.BaseURL)
	}
	return srv.Run(ctx)
}
