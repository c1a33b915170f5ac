package cli

import (
	"github.com/spf13/cobra"

	"github.com/tessro/vibe/internal/tui"
	"github.com/tessro/vibe/internal/widget"
)

var (
	tuiPlaylist string
	tuiVibe     string
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive player",
	Long: `Launch the interactive terminal player.

Pick a playlist (or your uploads), choose a vibe tab and play random
items from it. When an item ends another random one starts.

Keyboard shortcuts:
  q, Ctrl+C      Quit
  ?              Help
  Enter          Select playlist / play highlighted item
  u              Your uploads
  Tab, 1-5       Switch vibe
  Space          Play/Pause
  r, n, p        Random item
  Esc            Back to playlists`,
	Annotations: map[string]string{annotationQuietLog: "true"},
	RunE:        runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiPlaylist, "playlist", "p", "", "open this playlist ID, or \"uploads\"")
	tuiCmd.Flags().StringVar(&tuiVibe, "vibe", "", "initial vibe")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	filter, err := parseFilter(tuiVibe)
	if err != nil {
		return err
	}

	catalog, err := newCatalog(cmd.Context())
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Source:     catalog,
		Factory:    widget.ProcessFactory(cfg.Player.Command, cfg.Player.Args),
		PlaylistID: tuiPlaylist,
		Filter:     filter,
		Autoplay:   cfg.Player.AutoplayEnabled(),
		ShowBadges: cfg.TUI.BadgesEnabled(),
	})
}
