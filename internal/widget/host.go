// Package widget manages the media player backing a session.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/log"
)

// ErrClosed is returned by a Host after Close.
var ErrClosed = errors.New("widget host closed")

// Host owns the process-wide player widget. The widget is created lazily
// on first use; concurrent first uses share one initialisation. Each media
// change releases the previous item before the next is acquired.
type Host struct {
	factory core.WidgetFactory
	onEnded func()
	logger  zerolog.Logger

	init singleflight.Group
	cmd  sync.Mutex // serialises widget commands

	mu      sync.Mutex
	widget  core.Widget
	closed  bool
	mediaID string
	loadGen uint64
	playing bool
}

// NewHost returns a host that builds its widget with factory. onEnded is
// called from the widget's goroutine when the loaded item finishes.
func NewHost(factory core.WidgetFactory, onEnded func()) *Host {
	return &Host{
		factory: factory,
		onEnded: onEnded,
		logger:  log.WithComponent("widget"),
	}
}

// SetLogger replaces the host's logger.
func (h *Host) SetLogger(l zerolog.Logger) { h.logger = l }

// Init creates the widget if it does not exist yet.
func (h *Host) Init() error {
	_, err := h.ensure()
	return err
}

func (h *Host) ensure() (core.Widget, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	if w := h.widget; w != nil {
		h.mu.Unlock()
		return w, nil
	}
	h.mu.Unlock()

	v, err, _ := h.init.Do("widget", func() (any, error) {
		h.mu.Lock()
		if h.widget != nil {
			w := h.widget
			h.mu.Unlock()
			return w, nil
		}
		h.mu.Unlock()

		w, err := h.factory(h.ended)
		if err != nil {
			return nil, fmt.Errorf("create widget: %w", err)
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			_ = w.Unload()
			return nil, ErrClosed
		}
		h.widget = w
		h.logger.Debug().Msg("widget initialised")
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(core.Widget), nil
}

func (h *Host) ended() {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed || h.onEnded == nil {
		return
	}
	h.onEnded()
}

// Reconcile brings the widget in line with a session snapshot. A change of
// media id or load generation reloads; otherwise a change of the playing
// flag plays or pauses. An empty media id releases the loaded item.
func (h *Host) Reconcile(ctx context.Context, mediaID string, loadGen uint64, playing bool) error {
	h.cmd.Lock()
	defer h.cmd.Unlock()

	h.mu.Lock()
	same := mediaID == h.mediaID && loadGen == h.loadGen
	wasPlaying := h.playing
	h.mu.Unlock()

	if same {
		if mediaID == "" || playing == wasPlaying {
			return nil
		}
		return h.setPlaying(playing)
	}

	if mediaID == "" {
		h.mu.Lock()
		w := h.widget
		h.mu.Unlock()
		if w != nil {
			if err := h.release(w); err != nil {
				return err
			}
		}
		h.setState("", loadGen, false)
		return nil
	}

	w, err := h.ensure()
	if err != nil {
		return err
	}
	if err := h.release(w); err != nil {
		return err
	}

	if err := w.Load(ctx, mediaID, playing); err != nil {
		_ = w.Unload()
		h.setState("", 0, false)
		return fmt.Errorf("load %s: %w", mediaID, err)
	}
	h.setState(mediaID, loadGen, playing)
	h.logger.Debug().Str(log.FieldMediaID, mediaID).Bool("playing", playing).Msg("media loaded")
	return nil
}

func (h *Host) setPlaying(playing bool) error {
	h.mu.Lock()
	w := h.widget
	h.mu.Unlock()
	if w == nil {
		return nil
	}

	var err error
	if playing {
		err = w.Play()
	} else {
		err = w.Pause()
	}
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.playing = playing
	h.mu.Unlock()
	return nil
}

func (h *Host) release(w core.Widget) error {
	h.mu.Lock()
	loaded := h.mediaID != ""
	h.mu.Unlock()
	if !loaded {
		return nil
	}
	if err := w.Unload(); err != nil {
		return fmt.Errorf("release widget: %w", err)
	}
	return nil
}

func (h *Host) setState(mediaID string, loadGen uint64, playing bool) {
	h.mu.Lock()
	h.mediaID = mediaID
	h.loadGen = loadGen
	h.playing = playing
	h.mu.Unlock()
}

// MediaID returns the loaded media id, or "".
func (h *Host) MediaID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mediaID
}

// Close releases the widget. Later calls to Reconcile return ErrClosed.
func (h *Host) Close() error {
	h.cmd.Lock()
	defer h.cmd.Unlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	w := h.widget
	h.widget = nil
	h.mediaID = ""
	h.playing = false
	h.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Unload()
}
