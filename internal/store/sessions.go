package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tessro/vibe/internal/auth"
)

const (
	sessionPrefix = "session:"
	loginPrefix   = "login:"

	// PendingLoginTTL bounds how long a user has to finish the OAuth flow.
	PendingLoginTTL = 10 * time.Minute
)

// Session is a signed-in browser session.
type Session struct {
	ID        string      `json:"id"`
	Token     *auth.Token `json:"token"`
	CreatedAt time.Time   `json:"created_at"`
}

// PendingLogin is the PKCE verifier for an OAuth flow that has not returned yet.
type PendingLogin struct {
	State     string    `json:"state"`
	Verifier  string    `json:"verifier"`
	CreatedAt time.Time `json:"created_at"`
}

// Sessions encodes sessions and pending logins on top of a Store.
type Sessions struct {
	store Store
	ttl   time.Duration
}

// NewSessions returns a session manager whose sessions live for ttl.
func NewSessions(s Store, ttl time.Duration) *Sessions {
	return &Sessions{store: s, ttl: ttl}
}

// Create stores a new session for token under a random id.
func (m *Sessions) Create(ctx context.Context, token *auth.Token) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save writes sess, resetting its TTL.
func (m *Sessions) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.Put(ctx, sessionPrefix+sess.ID, data, m.ttl)
}

// Get loads the session with id. A missing session returns ErrNotFound.
func (m *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	data, err := m.store.Get(ctx, sessionPrefix+id)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Token == nil {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete removes the session with id.
func (m *Sessions) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, sessionPrefix+id)
}

// BeginLogin records the verifier for state.
func (m *Sessions) BeginLogin(ctx context.Context, state, verifier string) error {
	data, err := json.Marshal(PendingLogin{
		State:     state,
		Verifier:  verifier,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode pending login: %w", err)
	}
	return m.store.Put(ctx, loginPrefix+state, data, PendingLoginTTL)
}

// FinishLogin returns the verifier recorded for state and forgets it, so
// each state value can be redeemed once.
func (m *Sessions) FinishLogin(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrNotFound
	}
	data, err := m.store.Get(ctx, loginPrefix+state)
	if err != nil {
		return "", err
	}
	if err := m.store.Delete(ctx, loginPrefix+state); err != nil {
		return "", err
	}
	var p PendingLogin
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("decode pending login: %w", err)
	}
	return p.Verifier, nil
}
