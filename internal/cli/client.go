package cli

import (
	"context"
	"fmt"

	"github.com/tessro/vibe/internal/auth"
	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/youtube"
)

// oauthConfig builds the OAuth client settings from config.
func oauthConfig() (*auth.Config, error) {
	if cfg.YouTube.ClientID == "" {
		return nil, verrors.WithSuggestion(
			verrors.New(verrors.ErrInvalidConfig, "youtube.client_id not configured"),
			"Set it in ~/.config/vibe/config.toml or via VIBE_CLIENT_ID",
		)
	}
	return auth.NewConfig(cfg.YouTube.ClientID, cfg.YouTube.ClientSecret, cfg.YouTube.RedirectPort), nil
}

// youtubeOptions applies the configured API root and request budget.
func youtubeOptions() []youtube.Option {
	return []youtube.Option{
		youtube.WithBaseURL(cfg.YouTube.BaseURL),
		youtube.WithRateLimit(cfg.YouTube.RequestsPerSecond),
	}
}

// newCatalog returns a YouTube client signed in with the stored token.
func newCatalog(ctx context.Context) (*youtube.Client, error) {
	oauth, err := oauthConfig()
	if err != nil {
		return nil, err
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}

	ts, err := auth.TokenSource(ctx, oauth, storage)
	if err != nil {
		return nil, err
	}
	return youtube.NewWithTokenSource(ctx, ts, youtubeOptions()...), nil
}
