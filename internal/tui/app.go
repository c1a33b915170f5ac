// Package tui is the interactive terminal player.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/session"
	"github.com/tessro/vibe/internal/tui/components"
	"github.com/tessro/vibe/internal/tui/styles"
	"github.com/tessro/vibe/internal/vibe"
	"github.com/tessro/vibe/internal/widget"
)

// widgetTimeout bounds a single widget command.
const widgetTimeout = 10 * time.Second

// Options configures the TUI.
type Options struct {
	Source  core.CatalogSource
	Factory core.WidgetFactory

	// PlaylistID, when set, skips the playlist screen.
	PlaylistID string
	Filter     vibe.Vibe

	Autoplay   bool
	ShowBadges bool

	// Controller options, for tests.
	SessionOptions []session.Option
}

// Messages
type playlistsMsg session.PlaylistsResult
type itemsMsg session.ItemsResult
type endedMsg struct{}

// Model is the main TUI model
type Model struct {
	ctrl  *session.Controller
	src   core.CatalogSource
	host  *widget.Host
	ended chan struct{}

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	playlists  *components.Playlists
	songs      *components.Songs
	nowPlaying *components.NowPlaying

	initialPlaylist string
	autoplay        bool
	showBadges      bool
	lastGen         uint64

	width     int
	height    int
	showHelp  bool
	widgetErr error
	quitting  bool
	logger    zerolog.Logger
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	ended := make(chan struct{}, 1)
	host := widget.NewHost(opts.Factory, func() {
		select {
		case ended <- struct{}{}:
		default:
		}
	})

	ctrl := session.New(opts.SessionOptions...)
	if opts.Filter != "" {
		_ = ctrl.SetVibeFilter(opts.Filter)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Highlight

	return Model{
		ctrl:            ctrl,
		src:             opts.Source,
		host:            host,
		ended:           ended,
		keys:            defaultKeyMap(),
		help:            help.New(),
		spinner:         sp,
		playlists:       components.NewPlaylists(),
		songs:           components.NewSongs(),
		nowPlaying:      components.NewNowPlaying(),
		initialPlaylist: opts.PlaylistID,
		autoplay:        opts.Autoplay,
		showBadges:      opts.ShowBadges,
		logger:          log.WithComponent("tui"),
	}
}

// Commands
func (m Model) fetchPlaylists() tea.Cmd {
	f := m.ctrl.LoadPlaylists()
	src := m.src
	return func() tea.Msg {
		return playlistsMsg(f.Run(src))
	}
}

func (m Model) selectPlaylist(id string) tea.Cmd {
	f := m.ctrl.SelectPlaylist(id)
	m.songs.Reset()
	src := m.src
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return itemsMsg(f.Run(src))
	})
}

func waitForEnded(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return endedMsg{}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	load := m.fetchPlaylists()
	if m.initialPlaylist != "" {
		load = tea.Batch(load, m.selectPlaylist(m.initialPlaylist))
	}
	return tea.Batch(m.spinner.Tick, load, waitForEnded(m.ended))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m, cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case spinner.TickMsg:
		if m.ctrl.Snapshot().Loading {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case playlistsMsg:
		if !m.ctrl.ApplyPlaylists(session.PlaylistsResult(msg)) {
			m.logger.Debug().Uint64(log.FieldSeq, msg.Seq).Msg("discarded stale playlists")
		}

	case itemsMsg:
		if !m.ctrl.ApplyItems(session.ItemsResult(msg)) {
			m.logger.Debug().Uint64(log.FieldSeq, msg.Seq).Msg("discarded stale items")
		}

	case endedMsg:
		m.ctrl.OnPlaybackEnded()
		cmd = waitForEnded(m.ended)
	}

	if m.quitting {
		return m, cmd
	}
	m.sync()
	return m, cmd
}

// sync pushes the session's playback state to the widget.
func (m *Model) sync() {
	s := m.ctrl.Snapshot()
	if s.LoadGen != m.lastGen && s.Playing && !m.autoplay {
		m.ctrl.TogglePlayPause()
		s = m.ctrl.Snapshot()
	}
	m.lastGen = s.LoadGen

	ctx, cancel := context.WithTimeout(context.Background(), widgetTimeout)
	defer cancel()
	if err := m.host.Reconcile(ctx, s.MediaID(), s.LoadGen, s.Playing); err != nil {
		m.logger.Warn().Err(err).Msg("widget reconcile failed")
		m.widgetErr = err
		return
	}
	m.widgetErr = nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		_ = m.host.Close()
		m.ctrl.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	if m.ctrl.Snapshot().View() == core.ViewNoPlaylist {
		return m.handlePlaylistKeys(msg)
	}
	return m.handlePlayerKeys(msg)
}

func (m Model) handlePlaylistKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	s := m.ctrl.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.playlists.SelectPrev()
	case key.Matches(msg, m.keys.Down):
		m.playlists.SelectNext()
	case key.Matches(msg, m.keys.Select):
		if s.PlaylistsLoading {
			return m, nil
		}
		return m, m.selectPlaylist(m.playlists.Selected(s.Playlists))
	case key.Matches(msg, m.keys.Uploads):
		return m, m.selectPlaylist(core.UploadsPlaylistID)
	}
	return m, nil
}

func (m Model) handlePlayerKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.ctrl.DeselectPlaylist()
		if len(m.ctrl.Snapshot().Playlists) == 0 {
			return m, tea.Batch(m.spinner.Tick, m.fetchPlaylists())
		}

	case key.Matches(msg, m.keys.PlayPause):
		m.ctrl.TogglePlayPause()

	case key.Matches(msg, m.keys.Random):
		m.ctrl.SkipForward()

	case key.Matches(msg, m.keys.Prev):
		m.ctrl.SkipBackward()

	case key.Matches(msg, m.keys.NextVibe):
		m.cycleVibe(1)

	case key.Matches(msg, m.keys.PrevVibe):
		m.cycleVibe(-1)

	case key.Matches(msg, m.keys.VibeN):
		filters := vibe.Filters()
		if i := int(msg.String()[0] - '1'); i >= 0 && i < len(filters) {
			m.setVibe(filters[i])
		}

	case key.Matches(msg, m.keys.Up):
		m.songs.Up()

	case key.Matches(msg, m.keys.Down):
		m.songs.Down(m.ctrl.Snapshot().FilteredCount)

	case key.Matches(msg, m.keys.Select):
		if ref, ok := m.ctrl.FilteredRef(m.songs.Selected()); ok {
			if err := m.ctrl.SelectItem(ref); err != nil {
				m.logger.Warn().Err(err).Msg("select item")
			}
		}
	}
	return m, nil
}

func (m *Model) cycleVibe(step int) {
	filters := vibe.Filters()
	current := m.ctrl.Filter()
	for i, v := range filters {
		if v == current {
			next := (i + step + len(filters)) % len(filters)
			m.setVibe(filters[next])
			return
		}
	}
}

func (m *Model) setVibe(v vibe.Vibe) {
	if err := m.ctrl.SetVibeFilter(v); err == nil {
		m.songs.Reset()
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	s := m.ctrl.Snapshot()

	var body string
	switch s.View() {
	case core.ViewNoPlaylist:
		body = m.playlists.Render(s.Playlists, s.Loading, m.spinner.View(), m.width, m.height-4)
	case core.ViewLoading:
		body = lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" "+styles.Muted.Render("Loading songs..."))
	default:
		body = m.renderPlayer(s)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(s))
}

func (m Model) renderPlayer(s session.State) string {
	tabs := components.VibeTabs(s.Filter)
	bar := m.nowPlaying.Render(s, m.width-2)

	listHeight := m.height - lipgloss.Height(tabs) - lipgloss.Height(bar) - 4
	songs := m.songs.Render(m.ctrl.Filtered(), s.Current, s.Filter, m.width-2, listHeight, m.showBadges)

	return lipgloss.JoinVertical(lipgloss.Left, tabs, songs, bar)
}

func (m Model) renderStatusBar(s session.State) string {
	var status string
	switch {
	case s.Error != "":
		status = styles.ErrorText.Render("Error: " + s.Error)
	case m.widgetErr != nil:
		status = styles.ErrorText.Render("Player: " + m.widgetErr.Error())
	default:
		status = m.help.View(m.keys)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(strings.TrimRight(status, "\n"))
}

// Close releases the widget and cancels outstanding fetches.
func (m Model) Close() error {
	m.ctrl.Close()
	return m.host.Close()
}

// Run starts the TUI application
func Run(opts Options) error {
	model := NewModel(opts)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
