package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrUpstream          = errors.New("upstream fetch failed")
	ErrRateLimited       = errors.New("rate limited")
	ErrNetworkError      = errors.New("network error")
	ErrTimeout           = errors.New("request timeout")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrPlayerUnavailable = errors.New("player unavailable")
)

// Kind classifies a catalog-layer failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindUpstreamFetchFailed
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindUpstreamFetchFailed:
		return "UpstreamFetchFailed"
	case KindNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// KindOf returns the classification of err. Errors that are neither
// unauthorized nor not-found are treated as upstream failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNotAuthenticated):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindUpstreamFetchFailed
	}
}

// Error carries a message for display together with a sentinel for
// classification.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// New returns an error that displays msg and matches kind with errors.Is.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// VibeError wraps an error with a user-friendly suggestion.
type VibeError struct {
	Err        error
	Suggestion string
}

func (e *VibeError) Error() string {
	return e.Err.Error()
}

func (e *VibeError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &VibeError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// UserMessage converts err into the string shown inline to the user.
// It returns fallback when err carries no message of its own.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var vibeErr *VibeError
	if errors.As(err, &vibeErr) && vibeErr.Suggestion != "" {
		return vibeErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Authentication errors
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrUnauthorized) ||
		strings.Contains(errStr, "not authenticated") || strings.Contains(errStr, "invalid credentials") ||
		strings.Contains(errStr, "token expired") {
		return "Run 'vibe auth login' to sign in with your Google account"
	}

	if errors.Is(err, ErrNotFound) || strings.Contains(errStr, "uploads playlist not found") ||
		strings.Contains(errStr, "channel not found") {
		return "Run 'vibe playlists' to see the playlists on your account"
	}

	if errors.Is(err, ErrPlayerUnavailable) || strings.Contains(errStr, "executable file not found") {
		return "Install mpv or set [player] command in your config"
	}

	// Rate limiting
	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota") || strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'vibe config init' to create a configuration file"
	}

	if errors.Is(err, ErrUpstream) || strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "YouTube is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
