package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/tui/styles"
)

// Playlists is the playlist selection list. The first row is always the
// account's own uploads.
type Playlists struct {
	selected int
}

// NewPlaylists creates a new Playlists component
func NewPlaylists() *Playlists {
	return &Playlists{}
}

// SelectNext selects the next row
func (p *Playlists) SelectNext() {
	p.selected++
}

// SelectPrev selects the previous row
func (p *Playlists) SelectPrev() {
	if p.selected > 0 {
		p.selected--
	}
}

// Selected returns the selected playlist id. Row zero is the uploads
// pseudo-playlist.
func (p *Playlists) Selected(playlists []core.PlaylistSummary) string {
	p.clamp(len(playlists) + 1)
	if p.selected == 0 {
		return core.UploadsPlaylistID
	}
	return playlists[p.selected-1].ID
}

func (p *Playlists) clamp(rows int) {
	if p.selected >= rows {
		p.selected = rows - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Render renders the playlist panel. spinner is shown while loading.
func (p *Playlists) Render(playlists []core.PlaylistSummary, loading bool, spinner string, width, height int) string {
	title := styles.PanelTitle("Select a playlist", true)

	var content string
	switch {
	case loading:
		content = spinner + " " + styles.Muted.Render("Loading playlists...")
	default:
		content = p.renderRows(playlists, width-4, height-4)
		if len(playlists) == 0 {
			content = lipgloss.JoinVertical(lipgloss.Left,
				content,
				"",
				styles.Muted.Render("No playlists found"))
		}
	}

	return styles.Panel(true).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (p *Playlists) renderRows(playlists []core.PlaylistSummary, width, maxLines int) string {
	rows := make([]string, 0, len(playlists)+1)
	rows = append(rows, "📤 My uploads")
	for _, pl := range playlists {
		rows = append(rows, "🎶 "+pl.Title)
	}
	p.clamp(len(rows))

	if maxLines < 1 {
		maxLines = 1
	}
	start := 0
	if p.selected >= maxLines {
		start = p.selected - maxLines + 1
	}
	end := start + maxLines
	if end > len(rows) {
		end = len(rows)
	}

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		row := truncate(rows[i], width-2)
		if i == p.selected {
			lines = append(lines, styles.Highlight.Render("▸ "+row))
		} else {
			lines = append(lines, "  "+row)
		}
	}
	if end < len(rows) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(rows)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
