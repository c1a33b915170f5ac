package core

// PlaybackStatus is the playback sub-state layered over a selected item.
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPlaying
	StatusPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// ViewState is the derived screen of the session.
type ViewState int

const (
	ViewNoPlaylist ViewState = iota
	ViewLoading
	ViewReady
)

func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewReady:
		return "ready"
	default:
		return "no_playlist"
	}
}
