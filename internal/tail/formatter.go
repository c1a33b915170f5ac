package tail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/vibe"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	json          bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithJSON renders each event as one JSON object per line.
func WithJSON(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.json = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	switch {
	case f.json:
		return f.formatJSON(e)
	case f.template != nil:
		return f.formatTemplate(e)
	default:
		return f.formatLine(e)
	}
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := newEventData(e)
	data.Emoji = eventEmoji(e.Type)
	data.Time = e.Timestamp.Format("15:04:05")

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

func (f *Formatter) formatJSON(e Event) string {
	data := newEventData(e)
	if !f.showTimestamp {
		data.Timestamp = time.Time{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return f.formatLine(e)
	}
	return string(b)
}

// eventData is exposed to templates and JSON output.
type eventData struct {
	Type       string    `json:"type"`
	Emoji      string    `json:"-"`
	Timestamp  time.Time `json:"time,omitzero"`
	Time       string    `json:"-"`
	PlaylistID string    `json:"playlistId,omitempty"`
	Title      string    `json:"title,omitempty"`
	MediaID    string    `json:"mediaId,omitempty"`
	Vibes      []string  `json:"vibes,omitempty"`
	Vibe       string    `json:"filter"`
	Count      int       `json:"count"`
	Error      string    `json:"error,omitempty"`
}

func newEventData(e Event) eventData {
	data := eventData{
		Type:      eventTypeName(e.Type),
		Timestamp: e.Timestamp,
	}
	if s := e.Current; s != nil {
		data.PlaylistID = s.SelectedPlaylistID
		data.Vibe = string(s.Filter)
		data.Count = s.FilteredCount
		data.Error = s.Error
		if e.Type == EventPlaylistLoaded {
			data.Count = len(s.Catalog)
		}
		if s.Current != nil {
			data.Title = s.Current.Title
			data.MediaID = s.Current.MediaResourceID
			for _, v := range vibe.Classify(s.Current.Title, s.Current.Description) {
				data.Vibes = append(data.Vibes, string(v))
			}
		}
	}
	return data
}

// eventDescription returns a human-readable description of the event.
func eventDescription(e Event) string {
	s := e.Current
	if s == nil {
		return eventTypeName(e.Type)
	}

	switch e.Type {
	case EventPlaylistLoaded:
		return fmt.Sprintf("Loaded %d items from %s", len(s.Catalog), playlistName(s.SelectedPlaylistID))

	case EventLoadFailed:
		return "Error: " + s.Error

	case EventTrackStarted:
		if s.Current == nil {
			return "Track started"
		}
		desc := "Now playing: " + s.Current.Title
		if vibes := vibe.Classify(s.Current.Title, s.Current.Description); len(vibes) > 0 {
			names := make([]string, len(vibes))
			for i, v := range vibes {
				names[i] = string(v)
			}
			desc += " [" + strings.Join(names, ", ") + "]"
		}
		return desc

	case EventPaused:
		return "Paused"

	case EventResumed:
		return "Resumed"

	case EventFilterChanged:
		return fmt.Sprintf("Vibe: %s (%d items)", s.Filter.Label(), s.FilteredCount)

	case EventStopped:
		return "Stopped"

	default:
		return "Unknown event"
	}
}

func playlistName(id string) string {
	if id == core.UploadsPlaylistID {
		return "your uploads"
	}
	return "playlist " + id
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventPlaylistLoaded:
		return "📂"
	case EventLoadFailed:
		return "❌"
	case EventTrackStarted:
		return "🎵"
	case EventPaused:
		return "⏸️"
	case EventResumed:
		return "▶️"
	case EventFilterChanged:
		return "🎚️"
	case EventStopped:
		return "⏹️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventPlaylistLoaded:
		return "playlist_loaded"
	case EventLoadFailed:
		return "load_failed"
	case EventTrackStarted:
		return "track_started"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventFilterChanged:
		return "filter_changed"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// String returns the wire name of the event type.
func (t EventType) String() string {
	return eventTypeName(t)
}
