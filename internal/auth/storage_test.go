package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func googleToken(access, refresh string) *oauth2.Token {
	return (&oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: refresh,
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}).WithExtra(map[string]any{"scope": YouTubeReadonlyScope})
}

func TestTokenStorageLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibe", "token.json")
	storage, err := NewTokenStorage(path)
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	if tok, err := storage.Load(); err != nil || tok != nil {
		t.Fatalf("Load() before sign-in = %v, %v; want nil, nil", tok, err)
	}

	want := googleToken("ya29.access", "1//refresh")
	if err := storage.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := storage.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
	if scope, _ := got.Extra("scope").(string); scope != YouTubeReadonlyScope {
		t.Errorf("scope extra = %q after reload", scope)
	}

	if err := storage.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if storage.Exists() {
		t.Error("token still stored after Delete()")
	}
	if err := storage.Delete(); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestTokenStorageFileIsPrivate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vibe")
	storage, _ := NewTokenStorage(filepath.Join(dir, "token.json"))
	if err := storage.Save(googleToken("a", "r")); err != nil {
		t.Fatal(err)
	}

	for path, want := range map[string]os.FileMode{dir: 0700, storage.Path(): 0600} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s mode = %o, want %o", path, got, want)
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the token", len(entries))
	}
}

func TestTokenStorageFileFormat(t *testing.T) {
	storage, _ := NewTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	if err := storage.Save(googleToken("a", "r")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(storage.Path())
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("token file is not JSON: %v", err)
	}
	for _, key := range []string{"access_token", "token_type", "refresh_token", "expires_at", "scope"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("token file missing %q: %s", key, data)
		}
	}

	stored, err := storage.Stored()
	if err != nil {
		t.Fatal(err)
	}
	if !stored.HasScope(YouTubeReadonlyScope) {
		t.Errorf("Stored().Scope = %q", stored.Scope)
	}
}

func TestTokenStorageKeepsRefreshToken(t *testing.T) {
	storage, _ := NewTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	if err := storage.Save(googleToken("first", "1//refresh")); err != nil {
		t.Fatal(err)
	}

	// Google leaves refresh_token out of refresh responses.
	if err := storage.Save(googleToken("second", "")); err != nil {
		t.Fatal(err)
	}

	got, err := storage.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "second" || got.RefreshToken != "1//refresh" {
		t.Errorf("Load() = access %q refresh %q", got.AccessToken, got.RefreshToken)
	}
}

func TestTokenStorageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	storage, _ := NewTokenStorage(path)
	if _, err := storage.Load(); err == nil {
		t.Error("Load() error = nil for a corrupt file")
	}
}

func TestTokenStorageDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	storage, err := NewTokenStorage("")
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}
	if got := filepath.Base(filepath.Dir(storage.Path())); got != "vibe" {
		t.Errorf("Path() = %q, want it under a vibe directory", storage.Path())
	}
	if filepath.Base(storage.Path()) != DefaultTokenFileName {
		t.Errorf("Path() = %q", storage.Path())
	}
}

func TestTokenScopes(t *testing.T) {
	tests := []struct {
		scope string
		want  bool
	}{
		{"", true},
		{YouTubeReadonlyScope, true},
		{"openid " + YouTubeReadonlyScope + " email", true},
		{"openid email", false},
	}
	for _, tt := range tests {
		tok := &Token{Scope: tt.scope}
		if got := tok.HasScope(YouTubeReadonlyScope); got != tt.want {
			t.Errorf("HasScope() with scope %q = %v, want %v", tt.scope, got, tt.want)
		}
	}
}
