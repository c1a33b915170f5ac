package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tessro/vibe/internal/auth"
	"github.com/tessro/vibe/internal/core"
	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/store"
)

type fakeSource struct {
	mu         sync.Mutex
	ts         oauth2.TokenSource
	playlists  []core.PlaylistSummary
	items      []core.CatalogItem
	uploads    []core.CatalogItem
	err        error
	playlistID string
	calls      []string
}

func (f *fakeSource) token() error {
	if f.ts == nil {
		return nil
	}
	_, err := f.ts.Token()
	return err
}

func (f *fakeSource) ListPlaylists(ctx context.Context) ([]core.PlaylistSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "playlists")
	if err := f.token(); err != nil {
		return nil, err
	}
	return f.playlists, f.err
}

func (f *fakeSource) ListPlaylistItems(ctx context.Context, id string) ([]core.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "items")
	f.playlistID = id
	return f.items, f.err
}

func (f *fakeSource) ListOwnUploads(ctx context.Context) ([]core.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "uploads")
	return f.uploads, f.err
}

type testEnv struct {
	srv      *Server
	src      *fakeSource
	sessions *store.Sessions
	oauth    *httptest.Server
	lastForm url.Values
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	env := &testEnv{src: &fakeSource{}}

	env.oauth = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		env.lastForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh-access",
			"token_type":    "Bearer",
			"refresh_token": "fresh-refresh",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(env.oauth.Close)

	mem := store.NewMemory(0)
	t.Cleanup(func() { _ = mem.Close() })
	env.sessions = store.NewSessions(mem, time.Hour)

	oauthCfg := auth.NewConfig("client", "secret", 0)
	oauthCfg.Endpoint = &oauth2.Endpoint{
		AuthURL:  env.oauth.URL + "/auth",
		TokenURL: env.oauth.URL + "/token",
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:3000"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}

	env.srv = New(cfg, oauthCfg, env.sessions,
		WithLogger(zerolog.Nop()),
		WithSourceFactory(func(ctx context.Context, ts oauth2.TokenSource) core.CatalogSource {
			env.src.mu.Lock()
			env.src.ts = ts
			env.src.mu.Unlock()
			return env.src
		}),
	)
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signIn(t *testing.T, tok *auth.Token) *http.Cookie {
	t.Helper()
	if tok == nil {
		tok = &auth.Token{
			AccessToken:  "access",
			TokenType:    "Bearer",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}
	}
	sess, err := e.sessions.Create(context.Background(), tok)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookie, Value: sess.ID}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestIndexReportsSignIn(t *testing.T) {
	env := newTestEnv(t, Config{})

	var body map[string]any
	decode(t, env.do(t, http.MethodGet, "/", nil), &body)
	assert.Equal(t, false, body["signedIn"])
	assert.Equal(t, "/auth/login", body["login"])

	decode(t, env.do(t, http.MethodGet, "/", env.signIn(t, nil)), &body)
	assert.Equal(t, true, body["signedIn"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := newTestEnv(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestAPIRequiresSession(t *testing.T) {
	env := newTestEnv(t, Config{})

	for _, path := range []string{"/api/youtube/playlists", "/api/youtube/uploads"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, "Unauthorized", body["error"])

			rec = env.do(t, http.MethodGet, path, &http.Cookie{Name: SessionCookie, Value: "bogus"})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Empty(t, env.src.calls)
}

func TestPlaylists(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.src.playlists = []core.PlaylistSummary{{ID: "PL1", Title: "Morning"}}
	cookie := env.signIn(t, nil)

	rec := env.do(t, http.MethodGet, "/api/youtube/playlists", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body playlistsResponse
	decode(t, rec, &body)
	assert.Equal(t, env.src.playlists, body.Playlists)
}

func TestPlaylistsEmptyIsArray(t *testing.T) {
	env := newTestEnv(t, Config{})
	cookie := env.signIn(t, nil)

	rec := env.do(t, http.MethodGet, "/api/youtube/playlists", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"playlists":[]}`, rec.Body.String())
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want string
	}{
		{"playlists with message", "/api/youtube/playlists", verrors.New(verrors.ErrUpstream, "quotaExceeded"), "quotaExceeded"},
		{"playlists fallback", "/api/youtube/playlists", errors.New(""), "Failed to fetch playlists"},
		{"videos with message", "/api/youtube/uploads?playlistId=PL1", verrors.New(verrors.ErrNotFound, "Channel not found"), "Channel not found"},
		{"videos fallback", "/api/youtube/uploads", errors.New(""), "Failed to fetch videos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{})
			env.src.err = tt.err
			cookie := env.signIn(t, nil)

			rec := env.do(t, http.MethodGet, tt.path, cookie)
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestUploads(t *testing.T) {
	item := core.CatalogItem{
		ID:              "item-1",
		Title:           "Rainy jazz",
		ThumbnailURL:    "https://i.ytimg.com/hq.jpg",
		MediaResourceID: "vid-1",
		PublishedAt:     "2024-01-01T00:00:00Z",
	}

	t.Run("playlist", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.src.items = []core.CatalogItem{item}
		cookie := env.signIn(t, nil)

		rec := env.do(t, http.MethodGet, "/api/youtube/uploads?playlistId=PL9", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "PL9", env.src.playlistID)
		assert.Equal(t, []string{"items"}, env.src.calls)
		assert.JSONEq(t, `{"videos":[{
			"id":"item-1","title":"Rainy jazz","description":"",
			"thumbnailUrl":"https://i.ytimg.com/hq.jpg","resourceId":"vid-1",
			"publishedAt":"2024-01-01T00:00:00Z"}]}`, rec.Body.String())
	})

	t.Run("own uploads", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.src.uploads = []core.CatalogItem{item}
		cookie := env.signIn(t, nil)

		rec := env.do(t, http.MethodGet, "/api/youtube/uploads", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"uploads"}, env.src.calls)
	})
}

func TestVibes(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodGet, "/api/vibes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Vibes []vibeDefinition `json:"vibes"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Vibes, 4)
	assert.Equal(t, "Uptempo", body.Vibes[0].Name)
	assert.Equal(t, "Nature", body.Vibes[3].Name)
	assert.Contains(t, body.Vibes[1].Keywords, "jazz")
}

func TestClassify(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodGet, "/api/vibes/classify?title=Jazz+piano&description=rain+sounds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"vibes":["Jazzy","Nature"]}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/vibes/classify", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"vibes":[]}`, rec.Body.String())
}

func TestLoginRedirectsWithPKCE(t *testing.T) {
	env := newTestEnv(t, Config{BaseURL: "https://vibe.example.com/"})

	rec := env.do(t, http.MethodGet, "/auth/login", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc.String(), env.oauth.URL+"/auth"))

	q := loc.Query()
	assert.Equal(t, "https://vibe.example.com/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "offline", q.Get("access_type"))

	// The state is redeemable exactly once.
	verifier, err := env.sessions.FinishLogin(context.Background(), q.Get("state"))
	require.NoError(t, err)
	assert.NotEmpty(t, verifier)
}

func TestCallbackCreatesSession(t *testing.T) {
	env := newTestEnv(t, Config{})
	require.NoError(t, env.sessions.BeginLogin(context.Background(), "st", "the-verifier"))

	rec := env.do(t, http.MethodGet, "/auth/callback?code=authcode&state=st", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "authcode", env.lastForm.Get("code"))
	assert.Equal(t, "the-verifier", env.lastForm.Get("code_verifier"))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	sess, err := env.sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", sess.Token.AccessToken)

	rec = env.do(t, http.MethodGet, "/api/youtube/playlists", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCallbackRejects(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"provider error", "error=access_denied&state=st"},
		{"missing code", "state=st"},
		{"unknown state", "code=c&state=other"},
		{"missing state", "code=c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{})
			require.NoError(t, env.sessions.BeginLogin(context.Background(), "st", "v"))

			rec := env.do(t, http.MethodGet, "/auth/callback?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, Config{})
	cookie := env.signIn(t, nil)

	rec := env.do(t, http.MethodPost, "/auth/logout", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)

	_, err := env.sessions.Get(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, store.ErrNotFound)

	rec = env.do(t, http.MethodGet, "/api/youtube/playlists", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenIsRefreshedAndSaved(t *testing.T) {
	env := newTestEnv(t, Config{})
	cookie := env.signIn(t, &auth.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(-time.Hour),
	})

	rec := env.do(t, http.MethodGet, "/api/youtube/playlists", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refresh_token", env.lastForm.Get("grant_type"))

	sess, err := env.sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", sess.Token.AccessToken)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, Config{RateLimit: 2})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/api/vibes", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/vibes", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "Too many requests", body["error"])

	// Health checks are never limited.
	rec = env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.do(t, http.MethodGet, "/api/vibes", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `vibe_http_request_duration_seconds_count{method="GET",route="/api/vibes",status="200"}`)
}

func TestRecovererReturnsJSON(t *testing.T) {
	h := requestID(recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, rec.Header().Get(HeaderRequestID), body["requestId"])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- env.srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
