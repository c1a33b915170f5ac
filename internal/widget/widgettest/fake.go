// Package widgettest provides an in-memory widget for tests.
package widgettest

import (
	"context"
	"sync"

	"github.com/tessro/vibe/internal/core"
)

// Fake records the commands it receives.
type Fake struct {
	mu      sync.Mutex
	calls   []string
	loaded  string
	playing bool
	onEnded func()

	// LoadErr, if set, is returned by Load.
	LoadErr error
}

// Factory returns a widget factory producing f and counting creations.
func (f *Fake) Factory(created *int) core.WidgetFactory {
	return func(onEnded func()) (core.Widget, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if created != nil {
			*created++
		}
		f.onEnded = onEnded
		return f, nil
	}
}

func (f *Fake) Load(ctx context.Context, mediaID string, autoplay bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "load:"+mediaID)
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.loaded = mediaID
	f.playing = autoplay
	return nil
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "play")
	f.playing = true
	return nil
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "pause")
	f.playing = false
	return nil
}

func (f *Fake) Unload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "unload")
	f.loaded = ""
	f.playing = false
	return nil
}

// End simulates the loaded item finishing.
func (f *Fake) End() {
	f.mu.Lock()
	cb := f.onEnded
	f.loaded = ""
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Calls returns the recorded commands.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Loaded returns the loaded media id and whether it is playing.
func (f *Fake) Loaded() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded, f.playing
}
