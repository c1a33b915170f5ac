package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/vibe"
	"github.com/tessro/vibe/internal/wizard"
)

var (
	songsPlaylist string
	songsVibe     string
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List your YouTube playlists",
	RunE:  runPlaylists,
}

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "List the videos of a playlist with their vibes",
	Long: `List the videos of a playlist, tagged with the vibes detected from their
titles and descriptions.

Without --playlist a picker is shown on a terminal; otherwise your own
uploads are listed.

Examples:
  vibe songs                       # Pick a playlist
  vibe songs --playlist uploads    # Your uploads
  vibe songs -p PLxxxx --vibe jazzy`,
	RunE: runSongs,
}

func init() {
	songsCmd.Flags().StringVarP(&songsPlaylist, "playlist", "p", "", "playlist ID, or \"uploads\"")
	songsCmd.Flags().StringVar(&songsVibe, "vibe", "", "only list items with this vibe")
	rootCmd.AddCommand(playlistsCmd)
	rootCmd.AddCommand(songsCmd)
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	catalog, err := newCatalog(ctx)
	if err != nil {
		return err
	}

	playlists, err := catalog.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	if JSONOutput() {
		if playlists == nil {
			playlists = []core.PlaylistSummary{}
		}
		return printJSON(map[string]any{"playlists": playlists})
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists found. Use 'vibe songs --playlist uploads' for your uploads.")
		return nil
	}

	t := NewTable("ID", "TITLE")
	for _, p := range playlists {
		t.Row(p.ID, TruncateString(p.Title, 60))
	}
	t.Flush()
	return nil
}

func runSongs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	catalog, err := newCatalog(ctx)
	if err != nil {
		return err
	}

	interactive := wizard.NewInteractive()
	interactive.SetEnabled(!JSONOutput())

	playlistID, prompted, err := resolvePlaylist(ctx, catalog, interactive, songsPlaylist)
	if err != nil {
		return err
	}

	filterName := songsVibe
	if filterName == "" && prompted {
		if filterName, err = interactive.PromptVibe(string(vibe.All)); err != nil {
			return fmt.Errorf("selection cancelled: %w", err)
		}
	}
	filter, err := parseFilter(filterName)
	if err != nil {
		return err
	}

	items, err := fetchItems(ctx, catalog, playlistID)
	if err != nil {
		return fmt.Errorf("failed to fetch videos: %w", err)
	}

	type songJSON struct {
		ID         string      `json:"id"`
		Title      string      `json:"title"`
		ResourceID string      `json:"resourceId"`
		Vibes      []vibe.Vibe `json:"vibes"`
	}
	matched := make([]songJSON, 0, len(items))
	for _, it := range items {
		if !vibe.Matches(filter, it.Title, it.Description) {
			continue
		}
		matched = append(matched, songJSON{
			ID:         it.ID,
			Title:      it.Title,
			ResourceID: it.MediaResourceID,
			Vibes:      append([]vibe.Vibe{}, vibe.Classify(it.Title, it.Description)...),
		})
	}

	if JSONOutput() {
		return printJSON(map[string]any{
			"playlistId": playlistID,
			"filter":     filter,
			"total":      len(items),
			"count":      len(matched),
			"items":      matched,
		})
	}

	if len(matched) == 0 {
		fmt.Printf("No songs match %s (%d items in playlist).\n", filter.Label(), len(items))
		return nil
	}

	t := NewTable("#", "TITLE", "VIBES", "VIDEO")
	for i, s := range matched {
		t.Row(strconv.Itoa(i+1), TruncateString(s.Title, 50), vibeNames(s.Vibes), s.ResourceID)
	}
	t.Flush()
	fmt.Printf("%d of %d items · %s\n", len(matched), len(items), filter.Label())
	return nil
}

// resolvePlaylist returns the playlist to use. An empty flag offers a picker
// on a terminal and falls back to the account's uploads. prompted reports
// whether the picker ran.
func resolvePlaylist(ctx context.Context, src core.CatalogSource, interactive *wizard.Interactive, flag string) (id string, prompted bool, err error) {
	if !wizard.NeedsPlaylist(flag) {
		return flag, false, nil
	}
	if !interactive.CanInteract() {
		return core.UploadsPlaylistID, false, nil
	}

	playlists, err := src.ListPlaylists(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch playlists: %w", err)
	}
	interactive.SetPlaylists(playlists)

	id, err = interactive.PromptPlaylist()
	if err != nil {
		return "", false, fmt.Errorf("selection cancelled: %w", err)
	}
	if id == "" {
		id = core.UploadsPlaylistID
	}
	return id, true, nil
}

// fetchItems lists a playlist, or the account's uploads for the pseudo id.
func fetchItems(ctx context.Context, src core.CatalogSource, playlistID string) ([]core.CatalogItem, error) {
	if playlistID == core.UploadsPlaylistID {
		return src.ListOwnUploads(ctx)
	}
	return src.ListPlaylistItems(ctx, playlistID)
}

// parseFilter resolves a --vibe value; empty means All.
func parseFilter(name string) (vibe.Vibe, error) {
	if name == "" {
		return vibe.All, nil
	}
	return vibe.Parse(name)
}
