package core

// CatalogItem is one playable entry of a playlist.
type CatalogItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	// MediaResourceID is what the player loads; it differs from ID.
	MediaResourceID string `json:"resourceId"`
	PublishedAt     string `json:"publishedAt"`
}

// PlaylistSummary identifies a playlist for selection.
type PlaylistSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UploadsPlaylistID is a pseudo playlist id that selects the signed-in
// account's own uploads.
const UploadsPlaylistID = "uploads"
