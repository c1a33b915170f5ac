package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/vibe"
)

// PlaylistOptions lists the account's uploads first, then each playlist.
func PlaylistOptions(playlists []core.PlaylistSummary) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(playlists)+1)
	options = append(options, huh.NewOption("My uploads", core.UploadsPlaylistID))
	for _, p := range playlists {
		options = append(options, huh.NewOption(p.Title, p.ID))
	}
	return options
}

// VibeOptions lists All followed by the taxonomy, in order.
func VibeOptions() []huh.Option[string] {
	filters := vibe.Filters()
	options := make([]huh.Option[string], 0, len(filters))
	for _, v := range filters {
		options = append(options, huh.NewOption(v.Label(), string(v)))
	}
	return options
}

// PlaylistForm builds a filterable playlist picker writing to value.
func PlaylistForm(playlists []core.PlaylistSummary, value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a playlist").
				Description(fmt.Sprintf("%d playlists", len(playlists))).
				Options(PlaylistOptions(playlists)...).
				Filtering(len(playlists) > 10).
				Value(value),
		),
	)
}

// VibeForm builds a vibe picker writing the vibe name to value.
func VibeForm(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pick a vibe").
				Options(VibeOptions()...).
				Value(value),
		),
	)
}
