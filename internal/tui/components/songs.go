package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/session"
	"github.com/tessro/vibe/internal/tui/styles"
	"github.com/tessro/vibe/internal/vibe"
)

// Songs displays the filtered catalog
type Songs struct {
	offset   int
	selected int
}

// NewSongs creates a new Songs component
func NewSongs() *Songs {
	return &Songs{}
}

// Down moves the cursor down within n rows
func (s *Songs) Down(n int) {
	if s.selected < n-1 {
		s.selected++
	}
}

// Up moves the cursor up
func (s *Songs) Up() {
	if s.selected > 0 {
		s.selected--
	}
}

// Reset moves the cursor to the top
func (s *Songs) Reset() {
	s.selected = 0
	s.offset = 0
}

// Selected returns the cursor index
func (s *Songs) Selected() int {
	return s.selected
}

// Render renders the song panel
func (s *Songs) Render(refs []session.ItemRef, current *core.CatalogItem, filter vibe.Vibe, width, height int, badges bool) string {
	title := styles.PanelTitle(fmt.Sprintf("%s · %d items", filter.Label(), len(refs)), true)

	var content string
	if len(refs) == 0 {
		content = styles.Muted.Render("No songs match this vibe")
	} else {
		content = s.renderSongs(refs, current, width-4, height-4, badges)
	}

	return styles.Panel(true).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (s *Songs) renderSongs(refs []session.ItemRef, current *core.CatalogItem, width, maxLines int, badges bool) string {
	if s.selected >= len(refs) {
		s.selected = len(refs) - 1
	}

	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+visibleCount {
		s.offset = s.selected - visibleCount + 1
	}

	start := s.offset
	end := start + visibleCount
	if end > len(refs) {
		end = len(refs)
	}

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XX. " (4) + "▶ " or "  " (2) = 6 chars
	const overhead = 6

	for i := start; i < end; i++ {
		item := refs[i].Item()
		num := fmt.Sprintf("%2d.", i+1)

		var tags string
		if badges {
			vibes := refs[i].Vibes()
			parts := make([]string, len(vibes))
			for j, v := range vibes {
				parts[j] = styles.Badge(v)
			}
			tags = strings.Join(parts, " ")
		}

		available := width - overhead
		if tags != "" {
			available -= lipgloss.Width(tags) + 1
		}
		title := truncate(item.Title, available)

		marker := "  "
		if current != nil && current.ID == item.ID {
			marker = styles.Playing.Render("▶ ")
			title = styles.Playing.Render(title)
		}

		line := fmt.Sprintf("%s %s%s", styles.Dim.Render(num), marker, title)
		if tags != "" {
			line += " " + tags
		}
		if i == s.selected {
			line = styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}

	if end < len(refs) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(refs)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// truncate shortens s to max display cells.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return ansi.Truncate(s, max, "...")
}
