package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"

	// Catalog fields
	FieldPlaylistID = "playlist_id"
	FieldMediaID    = "media_id"
	FieldVibe       = "vibe"
	FieldSeq        = "seq"
	FieldCount      = "count"

	// HTTP fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldRoute    = "route"
	FieldStatus   = "status"
	FieldDuration = "duration"
	FieldAttempt  = "attempt"
)
