package session

import (
	"context"

	"github.com/tessro/vibe/internal/core"
)

// ItemsFetch is an outstanding catalog request issued by SelectPlaylist.
// Run it off the event loop and hand the result to ApplyItems.
type ItemsFetch struct {
	Seq        uint64
	PlaylistID string

	ctx context.Context
}

// Run performs the request against src. Uploads are resolved through
// ListOwnUploads.
func (f ItemsFetch) Run(src core.CatalogSource) ItemsResult {
	res := ItemsResult{Seq: f.Seq, PlaylistID: f.PlaylistID}
	if f.PlaylistID == core.UploadsPlaylistID {
		res.Items, res.Err = src.ListOwnUploads(f.ctx)
	} else {
		res.Items, res.Err = src.ListPlaylistItems(f.ctx, f.PlaylistID)
	}
	return res
}

// Context is cancelled once the request is superseded.
func (f ItemsFetch) Context() context.Context { return f.ctx }

// ItemsResult is the outcome of an ItemsFetch.
type ItemsResult struct {
	Seq        uint64
	PlaylistID string
	Items      []core.CatalogItem
	Err        error
}

// PlaylistsFetch is an outstanding request for the account's playlists.
type PlaylistsFetch struct {
	Seq uint64

	ctx context.Context
}

// Run performs the request against src.
func (f PlaylistsFetch) Run(src core.CatalogSource) PlaylistsResult {
	pls, err := src.ListPlaylists(f.ctx)
	return PlaylistsResult{Seq: f.Seq, Playlists: pls, Err: err}
}

// Context is cancelled once the request is superseded.
func (f PlaylistsFetch) Context() context.Context { return f.ctx }

// PlaylistsResult is the outcome of a PlaylistsFetch.
type PlaylistsResult struct {
	Seq       uint64
	Playlists []core.PlaylistSummary
	Err       error
}
