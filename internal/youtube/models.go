package youtube

// Thumbnail is one rendition of an item's thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Thumbnails holds the renditions the API returns.
type Thumbnails struct {
	Default *Thumbnail `json:"default"`
	Medium  *Thumbnail `json:"medium"`
	High    *Thumbnail `json:"high"`
}

// ResourceID identifies the video a playlist item points at.
type ResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

// Playlist is a playlists#playlist resource.
type Playlist struct {
	ID      string `json:"id"`
	Snippet *struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Thumbnails  Thumbnails `json:"thumbnails"`
	} `json:"snippet"`
}

// PlaylistListResponse is the body of playlists.list.
type PlaylistListResponse struct {
	Items         []Playlist `json:"items"`
	NextPageToken string     `json:"nextPageToken"`
}

// PlaylistItemSnippet is the snippet part of a playlist item.
type PlaylistItemSnippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt string     `json:"publishedAt"`
	Thumbnails  Thumbnails `json:"thumbnails"`
	ResourceID  ResourceID `json:"resourceId"`
}

// PlaylistItem is a playlistItems#playlistItem resource.
type PlaylistItem struct {
	ID      string               `json:"id"`
	Snippet *PlaylistItemSnippet `json:"snippet"`
}

// PlaylistItemListResponse is the body of playlistItems.list.
type PlaylistItemListResponse struct {
	Items         []PlaylistItem `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

// Channel is a channels#channel resource with contentDetails.
type Channel struct {
	ID             string `json:"id"`
	ContentDetails *struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

// ChannelListResponse is the body of channels.list.
type ChannelListResponse struct {
	Items []Channel `json:"items"`
}
