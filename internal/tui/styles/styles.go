package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vibe/internal/vibe"
)

// Colors
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Accent    = lipgloss.Color("#F59E0B") // Amber

	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#3B82F6")

	Background = lipgloss.Color("#1F2937")
	Surface    = lipgloss.Color("#374151")
	Border     = lipgloss.Color("#4B5563")
	Text       = lipgloss.Color("#F9FAFB")
	TextMuted  = lipgloss.Color("#9CA3AF")
	TextDim    = lipgloss.Color("#6B7280")
)

// vibeColors maps each vibe to the "to" end of its gradient hint.
var vibeColors = map[vibe.Vibe]lipgloss.Color{
	vibe.All:     Primary,
	vibe.Uptempo: lipgloss.Color("#DC2626"), // red-600
	vibe.Jazzy:   lipgloss.Color("#4F46E5"), // indigo-600
	vibe.Chill:   lipgloss.Color("#059669"), // emerald-600
	vibe.Nature:  lipgloss.Color("#65A30D"), // lime-600
}

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Playing = lipgloss.NewStyle().
		Foreground(Success)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	Selected = lipgloss.NewStyle().
			Background(Surface)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// VibeColor returns the display color for v.
func VibeColor(v vibe.Vibe) lipgloss.Color {
	if c, ok := vibeColors[v]; ok {
		return c
	}
	return TextMuted
}

// Badge renders a compact colored tag for v.
func Badge(v vibe.Vibe) string {
	return lipgloss.NewStyle().
		Foreground(Text).
		Background(VibeColor(v)).
		Padding(0, 1).
		Render(string(v))
}

// Tab renders a vibe tab, filled when active.
func Tab(v vibe.Vibe, active bool) string {
	style := lipgloss.NewStyle().Padding(0, 1)
	if active {
		return style.Bold(true).Foreground(Text).Background(VibeColor(v)).Render(v.Label())
	}
	return style.Foreground(VibeColor(v)).Render(v.Label())
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// Repeat repeats a string n times
func Repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}
