// Package youtube is a minimal YouTube Data API v3 client for reading the
// signed-in account's playlists.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/metrics"
)

const (
	// BaseURL is the YouTube Data API base URL.
	BaseURL = "https://www.googleapis.com/youtube/v3"

	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is a YouTube Data API client. The HTTP client it is given must
// attach the user's credentials, as oauth2.NewClient does.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	limiter       *rate.Limiter
	logger        zerolog.Logger
	maxRetries    int
	baseRetryWait time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRateLimit caps outgoing requests per second. Zero disables the cap.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithRetry sets the retry count and the initial backoff.
func WithRetry(retries int, wait time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = retries
		c.baseRetryWait = wait
	}
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client using httpClient for transport.
func New(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		httpClient:    httpClient,
		baseURL:       BaseURL,
		logger:        log.WithComponent("youtube"),
		maxRetries:    maxRetries,
		baseRetryWait: baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewWithTokenSource creates a client that authorises every request with a
// token from ts.
func NewWithTokenSource(ctx context.Context, ts oauth2.TokenSource, opts ...Option) *Client {
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = 30 * time.Second
	return New(hc, opts...)
}

// get fetches path with params and decodes the JSON body into result.
// endpoint labels metrics and logs.
func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string, result any) error {
	fullURL := BuildURL(c.baseURL+path, params)
	logger := log.WithContext(ctx, c.logger).With().Str("endpoint", endpoint).Logger()
	logger.Debug().Str("url", fullURL).Msg("request")

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.baseRetryWait * time.Duration(1<<(attempt-1))
			var rl *retryAfterError
			if errors.As(lastErr, &rl) && rl.after > 0 {
				wait = rl.after
			}
			metrics.IncUpstreamRetry(endpoint)
			logger.Debug().Int(log.FieldAttempt, attempt).Dur("wait", wait).AnErr("last_error", lastErr).Msg("retrying")
			if err := sleepWithContext(ctx, wait); err != nil {
				return err
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.ObserveUpstream(endpoint, 0, time.Since(start))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if isAuthError(err) {
				return fmt.Errorf("%w: %w", verrors.ErrUnauthorized, err)
			}
			lastErr = fmt.Errorf("%w: %w", verrors.ErrNetworkError, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(start))
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		logger.Debug().Int(log.FieldStatus, resp.StatusCode).Msg("response")

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &retryAfterError{err: parseAPIError(resp.StatusCode, body), after: parseRetryAfter(resp)}
			continue
		}
		if resp.StatusCode >= 400 {
			return parseAPIError(resp.StatusCode, body)
		}

		if result != nil && len(body) > 0 {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

// isAuthError reports whether a transport error came from obtaining the
// token rather than from the network.
func isAuthError(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re) || errors.Is(err, verrors.ErrNotAuthenticated)
}

// retryAfterError carries a server-requested delay for the next attempt.
type retryAfterError struct {
	err   error
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }

func (e *retryAfterError) Unwrap() error { return e.err }

func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// APIError represents a YouTube API error response.
type APIError struct {
	Status  int    `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Reason string `json:"reason"`
		Domain string `json:"domain"`
	} `json:"errors"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("YouTube API error %d: %s", e.Status, e.Message)
}

// Reason returns the first machine-readable reason, if any.
func (e *APIError) Reason() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Reason
}

// Unwrap classifies the error for errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return verrors.ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return verrors.ErrNotFound
	case e.Status == http.StatusTooManyRequests,
		e.Reason() == "quotaExceeded", e.Reason() == "rateLimitExceeded":
		return verrors.ErrRateLimited
	case e.Status == http.StatusForbidden:
		return verrors.ErrUnauthorized
	default:
		return verrors.ErrUpstream
	}
}

func parseAPIError(status int, body []byte) error {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		if envelope.Error.Status == 0 {
			envelope.Error.Status = status
		}
		return envelope.Error
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
