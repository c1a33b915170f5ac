package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/tessro/vibe/internal/auth"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/store"
)

type sessionKey struct{}

func sessionFromContext(ctx context.Context) *store.Session {
	sess, _ := ctx.Value(sessionKey{}).(*store.Session)
	return sess
}

// requireSession rejects requests without a live session with 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		sess, err := s.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger := log.WithContext(r.Context(), s.logger)
				logger.Error().Err(err).Msg("session lookup failed")
			}
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	pkce, err := auth.NewPKCE()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start sign-in")
		return
	}
	if err := s.sessions.BeginLogin(r.Context(), pkce.State, pkce.Verifier); err != nil {
		logger := log.WithContext(r.Context(), s.logger)
		logger.Error().Err(err).Msg("failed to record pending login")
		writeError(w, http.StatusInternalServerError, "Failed to start sign-in")
		return
	}
	http.Redirect(w, r, s.oauth.AuthURL(pkce), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	logger := log.WithContext(r.Context(), s.logger)
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		writeError(w, http.StatusBadRequest, "Authorization failed: "+e)
		return
	}
	code, state := q.Get("code"), q.Get("state")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	verifier, err := s.sessions.FinishLogin(r.Context(), state)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error().Err(err).Msg("pending login lookup failed")
		}
		writeError(w, http.StatusBadRequest, "Invalid or expired login state")
		return
	}

	tok, err := s.oauth.Exchange(r.Context(), code, verifier)
	if err != nil {
		logger.Warn().Err(err).Msg("token exchange failed")
		writeError(w, http.StatusBadGateway, "Failed to sign in")
		return
	}

	sess, err := s.sessions.Create(r.Context(), tok)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create session")
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	logger.Info().Str(log.FieldSessionID, sess.ID).Msg("signed in")

	http.SetCookie(w, s.cookie(sess.ID, int(s.cfg.SessionTTL.Seconds())))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := s.sessions.Delete(r.Context(), cookie.Value); err != nil {
			logger := log.WithContext(r.Context(), s.logger)
			logger.Error().Err(err).Msg("failed to delete session")
		}
	}
	http.SetCookie(w, s.cookie("", -1))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(s.cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}
}

// tokenSource returns a source for sess that writes refreshed tokens back
// to the session store.
func (s *Server) tokenSource(ctx context.Context, sess *store.Session) oauth2.TokenSource {
	base := s.oauth.OAuth2().TokenSource(ctx, sess.Token.OAuth2())
	return &sessionTokenSource{
		ctx:      ctx,
		src:      oauth2.ReuseTokenSourceWithExpiry(sess.Token.OAuth2(), base, auth.ExpiryBuffer),
		sessions: s.sessions,
		sess:     sess,
	}
}

type sessionTokenSource struct {
	ctx      context.Context
	src      oauth2.TokenSource
	sessions *store.Sessions

	mu   sync.Mutex
	sess *store.Session
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.sess.Token.AccessToken {
		updated := *s.sess
		updated.Token = auth.FromOAuth2(tok)
		if updated.Token.RefreshToken == "" {
			updated.Token.RefreshToken = s.sess.Token.RefreshToken
		}
		if err := s.sessions.Save(s.ctx, &updated); err != nil {
			return nil, err
		}
		s.sess = &updated
	}
	return tok, nil
}
