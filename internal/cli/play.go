package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/session"
	"github.com/tessro/vibe/internal/tail"
	"github.com/tessro/vibe/internal/widget"
	"github.com/tessro/vibe/internal/wizard"
)

const (
	// eventBuffer holds events the printer has not caught up with.
	eventBuffer = 64

	reconcileTimeout = 10 * time.Second
)

var (
	playPlaylist string
	playVibe     string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play random picks from a playlist without the UI",
	Long: `Play random items from a playlist in the external player, printing
events as they happen. When an item ends another random item of the
selected vibe starts. Stop with Ctrl+C.

Events:
  playlist_loaded   items fetched
  load_failed       the fetch failed
  track_started     an item started (a repeat counts)
  paused, resumed   playback toggled
  filter_changed    the vibe changed
  stopped           playback stopped

Examples:
  vibe play                          # Pick a playlist
  vibe play --playlist uploads --vibe chill
  vibe play -p PLxxxx --json         # JSON lines`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playPlaylist, "playlist", "p", "", "playlist ID, or \"uploads\"")
	playCmd.Flags().StringVar(&playVibe, "vibe", "", "only play items with this vibe")
	addEventFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := newCatalog(ctx)
	if err != nil {
		return err
	}

	interactive := wizard.NewInteractive()
	interactive.SetEnabled(!JSONOutput())

	playlistID, prompted, err := resolvePlaylist(ctx, catalog, interactive, playPlaylist)
	if err != nil {
		return err
	}
	filterName := playVibe
	if filterName == "" && prompted {
		if filterName, err = interactive.PromptVibe("All"); err != nil {
			return fmt.Errorf("selection cancelled: %w", err)
		}
	}
	filter, err := parseFilter(filterName)
	if err != nil {
		return err
	}

	logger := log.WithComponent("play")
	ctrl := session.New(session.WithContext(ctx))
	if err := ctrl.SetVibeFilter(filter); err != nil {
		return err
	}

	watcher := tail.NewWatcher(eventBuffer)
	var loop *session.Loop
	host := widget.NewHost(widget.ProcessFactory(cfg.Player.Command, cfg.Player.Args), func() {
		go loop.Post(func(c *session.Controller) { c.OnPlaybackEnded() })
	})
	defer func() { _ = host.Close() }()

	widgetErr := make(chan error, 1)
	reconcile := func(s session.State) {
		rctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
		defer cancel()
		if err := host.Reconcile(rctx, s.MediaID(), s.LoadGen, s.Playing); err != nil {
			logger.Warn().Err(err).Msg("widget reconcile failed")
			select {
			case widgetErr <- err:
			default:
			}
		}
	}
	loop = session.NewLoop(ctrl, catalog, reconcile, watcher.Observe)

	runErr := make(chan error, 1)
	go func() {
		runErr <- loop.Run(ctx)
		watcher.Close()
	}()

	loop.SelectPlaylist(playlistID)

	formatter := newEventFormatter()
	for {
		select {
		case e, ok := <-watcher.Events():
			if !ok {
				return waitLoop(runErr)
			}
			printEvent(formatter, e)

			switch e.Type {
			case tail.EventLoadFailed:
				stop()
				_ = waitLoop(runErr)
				return errors.New(e.Current.Error)
			case tail.EventPlaylistLoaded:
				if e.Current.FilteredCount == 0 {
					stop()
					_ = waitLoop(runErr)
					return verrors.WithSuggestion(
						fmt.Errorf("no items match %s", filter.Label()),
						"Run 'vibe songs' to see the vibes of each item",
					)
				}
				loop.Post(func(c *session.Controller) { c.PlayRandom() })
			}

		case err := <-widgetErr:
			stop()
			_ = waitLoop(runErr)
			return err
		}
	}
}

// waitLoop waits for the loop to stop. Cancellation is a clean exit.
func waitLoop(runErr <-chan error) error {
	err := <-runErr
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
