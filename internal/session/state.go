package session

import (
	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/vibe"
)

// State is a point-in-time copy of the session for rendering and diffing.
type State struct {
	Playlists        []core.PlaylistSummary
	PlaylistsLoading bool

	SelectedPlaylistID string
	HasSelection       bool

	Catalog       []core.CatalogItem
	Filter        vibe.Vibe
	FilteredCount int

	Current *core.CatalogItem
	Playing bool
	// LoadGen increases every time an item is (re)started, including a
	// repeat of the same item.
	LoadGen uint64

	Loading bool
	Error   string
}

// Playback derives the playback sub-state. Without a current item the
// playing flag is meaningless and the session is stopped.
func (s State) Playback() core.PlaybackStatus {
	switch {
	case s.Current == nil:
		return core.StatusStopped
	case s.Playing:
		return core.StatusPlaying
	default:
		return core.StatusPaused
	}
}

// View derives which screen the session is on.
func (s State) View() core.ViewState {
	switch {
	case !s.HasSelection:
		return core.ViewNoPlaylist
	case s.Loading:
		return core.ViewLoading
	default:
		return core.ViewReady
	}
}

// MediaID returns the media resource id of the current item, or "".
func (s State) MediaID() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.MediaResourceID
}
