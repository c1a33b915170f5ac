package tail

import (
	"sync"
	"time"

	"github.com/tessro/vibe/internal/session"
)

// EventType represents the type of session event.
type EventType int

const (
	EventPlaylistLoaded EventType = iota
	EventLoadFailed
	EventTrackStarted
	EventPaused
	EventResumed
	EventFilterChanged
	EventStopped
)

// Event represents a session state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *session.State
	Current   *session.State
}

// Watcher turns the snapshots a session.Loop publishes into events.
// Observe is meant to be passed to session.NewLoop as an observer.
type Watcher struct {
	mu     sync.Mutex
	prev   *session.State
	events chan Event
	closed bool
	now    func() time.Time
}

// NewWatcher creates a watcher that buffers up to buffer events.
func NewWatcher(buffer int) *Watcher {
	if buffer <= 0 {
		buffer = 16
	}
	return &Watcher{
		events: make(chan Event, buffer),
		now:    time.Now,
	}
}

// Events returns the channel of session events. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Observe diffs s against the previous snapshot and queues the resulting
// events. It never blocks; events are dropped when the buffer is full.
func (w *Watcher) Observe(s session.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	curr := s
	for _, e := range diffAt(w.prev, &curr, w.now()) {
		select {
		case w.events <- e:
		default:
			// Drop event if channel is full
		}
	}
	w.prev = &curr
}

// Close stops the watcher and closes the events channel.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
}

// Diff compares two snapshots and returns the events between them. A nil
// prev is treated as a fresh session.
func Diff(prev, curr *session.State) []Event {
	return diffAt(prev, curr, time.Now())
}

func diffAt(prev, curr *session.State, now time.Time) []Event {
	if curr == nil {
		return nil
	}
	if prev == nil {
		prev = &session.State{Filter: curr.Filter}
	}

	var events []Event
	emit := func(t EventType) {
		events = append(events, Event{
			Type:      t,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	// Load results
	if loadFailed(prev, curr) {
		emit(EventLoadFailed)
	} else if playlistLoaded(prev, curr) {
		emit(EventPlaylistLoaded)
	}

	if prev.Filter != curr.Filter {
		emit(EventFilterChanged)
	}

	// Playback
	switch {
	case curr.Current != nil && curr.LoadGen != prev.LoadGen:
		emit(EventTrackStarted)
	case prev.Current != nil && curr.Current == nil:
		emit(EventStopped)
	case prev.Current != nil && curr.Current != nil:
		if prev.Playing && !curr.Playing {
			emit(EventPaused)
		} else if !prev.Playing && curr.Playing {
			emit(EventResumed)
		}
	}

	return events
}

// playlistLoaded returns true when a selected playlist became ready.
func playlistLoaded(prev, curr *session.State) bool {
	if !curr.HasSelection || curr.Loading || curr.Error != "" {
		return false
	}
	if prev.SelectedPlaylistID != curr.SelectedPlaylistID || !prev.HasSelection {
		return true
	}
	return prev.Loading
}

// loadFailed returns true when a fetch finished with a new error.
func loadFailed(prev, curr *session.State) bool {
	if curr.Error == "" || curr.Loading {
		return false
	}
	return prev.Loading || prev.Error != curr.Error
}
