package youtube

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tessro/vibe/internal/core"
	verrors "github.com/tessro/vibe/internal/errors"
)

// pageSize is the only page ever requested; there is no pagination.
const pageSize = 50

const noTitle = "No Title"

// ListPlaylists returns the first page of the account's playlists.
func (c *Client) ListPlaylists(ctx context.Context) ([]core.PlaylistSummary, error) {
	var resp PlaylistListResponse
	err := c.get(ctx, "playlists", "/playlists", map[string]string{
		"part":       "snippet",
		"mine":       "true",
		"maxResults": strconv.Itoa(pageSize),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	out := make([]core.PlaylistSummary, 0, len(resp.Items))
	for _, p := range resp.Items {
		out = append(out, toPlaylistSummary(p))
	}
	return out, nil
}

// ListPlaylistItems returns the first page of a playlist's items.
func (c *Client) ListPlaylistItems(ctx context.Context, playlistID string) ([]core.CatalogItem, error) {
	var resp PlaylistItemListResponse
	err := c.get(ctx, "playlistItems", "/playlistItems", map[string]string{
		"part":       "snippet",
		"playlistId": playlistID,
		"maxResults": strconv.Itoa(pageSize),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("list playlist items: %w", err)
	}

	out := make([]core.CatalogItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, toCatalogItem(it))
	}
	return out, nil
}

// ListOwnUploads resolves the account's uploads playlist and lists it.
func (c *Client) ListOwnUploads(ctx context.Context) ([]core.CatalogItem, error) {
	uploads, err := c.UploadsPlaylistID(ctx)
	if err != nil {
		return nil, err
	}
	return c.ListPlaylistItems(ctx, uploads)
}

// UploadsPlaylistID returns the id of the account's implicit uploads
// playlist.
func (c *Client) UploadsPlaylistID(ctx context.Context) (string, error) {
	var resp ChannelListResponse
	err := c.get(ctx, "channels", "/channels", map[string]string{
		"part": "contentDetails",
		"mine": "true",
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("get channel: %w", err)
	}

	if len(resp.Items) == 0 {
		return "", verrors.New(verrors.ErrNotFound, "Channel not found")
	}
	details := resp.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists.Uploads == "" {
		return "", verrors.New(verrors.ErrNotFound, "Uploads playlist not found")
	}
	return details.RelatedPlaylists.Uploads, nil
}

func toPlaylistSummary(p Playlist) core.PlaylistSummary {
	title := ""
	if p.Snippet != nil {
		title = p.Snippet.Title
	}
	if title == "" {
		title = noTitle
	}
	return core.PlaylistSummary{ID: p.ID, Title: title}
}

func toCatalogItem(it PlaylistItem) core.CatalogItem {
	item := core.CatalogItem{ID: it.ID, Title: noTitle}
	s := it.Snippet
	if s == nil {
		return item
	}
	if s.Title != "" {
		item.Title = s.Title
	}
	item.Description = s.Description
	item.ThumbnailURL = thumbnailURL(s.Thumbnails)
	item.MediaResourceID = s.ResourceID.VideoID
	item.PublishedAt = s.PublishedAt
	return item
}

// thumbnailURL prefers the high rendition, then medium.
func thumbnailURL(t Thumbnails) string {
	if t.High != nil && t.High.URL != "" {
		return t.High.URL
	}
	if t.Medium != nil && t.Medium.URL != "" {
		return t.Medium.URL
	}
	return ""
}

var _ core.CatalogSource = (*Client)(nil)
