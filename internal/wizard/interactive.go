// Package wizard offers interactive pickers when a command is missing an
// argument and stdout is a terminal.
package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/vibe/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled   bool
	playlists []core.PlaylistSummary
	isTTY     func() bool
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
		isTTY:   IsTerminal,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetPlaylists sets the playlists offered by the playlist picker.
func (i *Interactive) SetPlaylists(playlists []core.PlaylistSummary) {
	i.playlists = playlists
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && i.isTTY()
}

// PromptPlaylist launches the playlist picker if interactive mode is
// available. It returns "" when not interactive.
func (i *Interactive) PromptPlaylist() (string, error) {
	if !i.CanInteract() {
		return "", nil
	}
	var id string
	if err := PlaylistForm(i.playlists, &id).Run(); err != nil {
		return "", err
	}
	return id, nil
}

// PromptVibe launches the vibe picker if interactive mode is available.
// It returns fallback when not interactive.
func (i *Interactive) PromptVibe(fallback string) (string, error) {
	if !i.CanInteract() {
		return fallback, nil
	}
	v := fallback
	if err := VibeForm(&v).Run(); err != nil {
		return "", err
	}
	return v, nil
}

// NeedsPlaylist returns true if the playlist flag is missing.
func NeedsPlaylist(playlistFlag string) bool {
	return playlistFlag == ""
}
