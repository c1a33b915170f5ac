package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vibe/internal/tui/styles"
	"github.com/tessro/vibe/internal/vibe"
)

// VibeTabs renders the filter tabs with their number keys.
func VibeTabs(active vibe.Vibe) string {
	filters := vibe.Filters()
	tabs := make([]string, 0, len(filters))
	for i, v := range filters {
		key := styles.Dim.Render(fmt.Sprintf("%d", i+1))
		tabs = append(tabs, key+styles.Tab(v, v == active))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
