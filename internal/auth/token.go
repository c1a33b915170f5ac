package auth

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ExpiryBuffer is how long before expiry a token is treated as expired.
const ExpiryBuffer = 60 * time.Second

// Token is a Google OAuth token in the form vibe persists it.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	// Scope is the space-separated list Google reports as granted, which
	// may be narrower than what was requested.
	Scope string `json:"scope,omitempty"`
}

// IsExpired returns true if the token has expired or will expire within the buffer.
func (t *Token) IsExpired() bool {
	return time.Now().Add(ExpiryBuffer).After(t.ExpiresAt)
}

// HasScope reports whether scope was granted. Tokens stored without a
// scope list are assumed to carry what was requested.
func (t *Token) HasScope(scope string) bool {
	if t.Scope == "" {
		return true
	}
	return slices.Contains(strings.Fields(t.Scope), scope)
}

// OAuth2 converts t for use with golang.org/x/oauth2.
func (t *Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
	if t.Scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": t.Scope})
	}
	return tok
}

// FromOAuth2 converts an oauth2 token for storage, keeping the granted
// scope from the token response.
func FromOAuth2(t *oauth2.Token) *Token {
	tok := &Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.Expiry,
	}
	if scope, ok := t.Extra("scope").(string); ok {
		tok.Scope = scope
	}
	return tok
}
