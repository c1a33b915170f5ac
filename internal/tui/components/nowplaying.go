package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/session"
	"github.com/tessro/vibe/internal/tui/styles"
	"github.com/tessro/vibe/internal/vibe"
)

// NowPlaying displays the current item as a bar
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing bar
func (n *NowPlaying) Render(state session.State, width int) string {
	var content string
	if state.Current == nil {
		content = styles.Muted.Render("Nothing playing · press r for a random song")
	} else {
		content = n.renderItem(state, width-4)
	}

	return styles.Panel(state.Playback() == core.StatusPlaying).
		Width(width).
		Render(content)
}

func (n *NowPlaying) renderItem(state session.State, width int) string {
	item := state.Current
	playing := state.Playback() == core.StatusPlaying

	icon := styles.StatusIcon(playing)
	status := styles.Paused.Render("Paused")
	if playing {
		status = styles.Playing.Render("Playing")
	}

	vibes := vibe.Classify(item.Title, item.Description)
	badges := make([]string, len(vibes))
	for i, v := range vibes {
		badges[i] = styles.Badge(v)
	}
	tags := strings.Join(badges, " ")

	available := width - lipgloss.Width(status) - lipgloss.Width(tags) - 4
	title := styles.Title.Render(truncate(item.Title, available))

	line := icon + " " + title
	if tags != "" {
		line += " " + tags
	}
	gap := width - lipgloss.Width(line) - lipgloss.Width(status)
	return line + styles.Repeat(" ", gap) + status
}
