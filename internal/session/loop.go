package session

import (
	"context"
	"sync"

	"github.com/tessro/vibe/internal/core"
)

// Loop runs a Controller on its own goroutine for callers that lack an
// event loop of their own, such as headless playback. Every event runs to
// completion before the next, and observers see a snapshot after each.
type Loop struct {
	ctrl      *Controller
	src       core.CatalogSource
	observers []func(State)

	events chan func(*Controller)
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewLoop creates a loop around ctrl that fetches from src.
func NewLoop(ctrl *Controller, src core.CatalogSource, observers ...func(State)) *Loop {
	return &Loop{
		ctrl:      ctrl,
		src:       src,
		observers: observers,
		events:    make(chan func(*Controller)),
		done:      make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled. Outstanding fetches are
// cancelled and waited for before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.ctrl.Close()
		close(l.done)
		l.wg.Wait()
	}()

	l.notify()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn(l.ctrl)
			l.notify()
		}
	}
}

// Post queues fn to run on the loop. It reports false once the loop has
// stopped.
func (l *Loop) Post(fn func(*Controller)) bool {
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// LoadPlaylists fetches the account's playlists.
func (l *Loop) LoadPlaylists() bool {
	return l.Post(func(c *Controller) {
		f := c.LoadPlaylists()
		l.spawn(func() {
			res := f.Run(l.src)
			l.Post(func(c *Controller) { c.ApplyPlaylists(res) })
		})
	})
}

// SelectPlaylist selects id and fetches its items.
func (l *Loop) SelectPlaylist(id string) bool {
	return l.Post(func(c *Controller) {
		f := c.SelectPlaylist(id)
		l.spawn(func() {
			res := f.Run(l.src)
			l.Post(func(c *Controller) { c.ApplyItems(res) })
		})
	})
}

// spawn must be called from the loop goroutine.
func (l *Loop) spawn(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

func (l *Loop) notify() {
	if len(l.observers) == 0 {
		return
	}
	s := l.ctrl.Snapshot()
	for _, obs := range l.observers {
		obs(s)
	}
}
