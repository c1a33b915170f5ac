package auth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	verrors "github.com/tessro/vibe/internal/errors"
)

// TokenSource returns a source backed by the stored token. Refreshed tokens
// are written back to storage. It fails with ErrNotAuthenticated when
// nothing is stored.
func TokenSource(ctx context.Context, cfg *Config, storage *TokenStorage) (oauth2.TokenSource, error) {
	tok, err := storage.Load()
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, verrors.ErrNotAuthenticated
	}

	base := cfg.OAuth2().TokenSource(ctx, tok)
	return &persistingSource{
		src:     oauth2.ReuseTokenSourceWithExpiry(tok, base, ExpiryBuffer),
		storage: storage,
		last:    tok.AccessToken,
	}, nil
}

// persistingSource saves each new access token it hands out.
type persistingSource struct {
	src     oauth2.TokenSource
	storage *TokenStorage

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.storage.Save(tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
