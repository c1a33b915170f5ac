package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// DefaultTokenFileName is the token file under the vibe config directory.
const DefaultTokenFileName = "token.json"

// TokenStorage keeps the signed-in account's Google token on disk, readable
// only by the owner.
type TokenStorage struct {
	path string
}

// NewTokenStorage returns storage at path, or at
// <user config dir>/vibe/token.json when path is empty.
func NewTokenStorage(path string) (*TokenStorage, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config directory: %w", err)
		}
		path = filepath.Join(dir, "vibe", DefaultTokenFileName)
	}
	return &TokenStorage{path: path}, nil
}

// Save writes tok, replacing any stored token. A token without a refresh
// token keeps the stored one, since Google omits it on refresh.
func (s *TokenStorage) Save(tok *oauth2.Token) error {
	stored := FromOAuth2(tok)
	if stored.RefreshToken == "" {
		if prev, err := s.read(); err == nil && prev != nil {
			stored.RefreshToken = prev.RefreshToken
		}
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	// Rename over the old file so a crash never leaves half a token.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Load returns the stored token, or nil when nobody has signed in.
func (s *TokenStorage) Load() (*oauth2.Token, error) {
	stored, err := s.read()
	if err != nil || stored == nil {
		return nil, err
	}
	return stored.OAuth2(), nil
}

// Stored returns the token as persisted, including its granted scope.
func (s *TokenStorage) Stored() (*Token, error) {
	return s.read()
}

func (s *TokenStorage) read() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", s.path, err)
	}
	return &tok, nil
}

// Delete removes the stored token. A missing token is not an error.
func (s *TokenStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Exists reports whether a token is stored.
func (s *TokenStorage) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the token file location.
func (s *TokenStorage) Path() string {
	return s.path
}
