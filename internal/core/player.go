package core

import "context"

// CatalogSource is the read API of the video platform.
type CatalogSource interface {
	ListPlaylists(ctx context.Context) ([]PlaylistSummary, error)
	ListPlaylistItems(ctx context.Context, playlistID string) ([]CatalogItem, error)
	ListOwnUploads(ctx context.Context) ([]CatalogItem, error)
}

// Widget controls one loaded media item.
type Widget interface {
	// Load replaces whatever is loaded with mediaID. When autoplay is false
	// the item is loaded paused.
	Load(ctx context.Context, mediaID string, autoplay bool) error
	Play() error
	Pause() error
	// Unload releases the loaded item without reporting it as ended. It is
	// safe to call with nothing loaded.
	Unload() error
}

// WidgetFactory creates widgets that report natural completion through
// onEnded. onEnded fires at most once per Load.
type WidgetFactory func(onEnded func()) (Widget, error)
