// Package session implements the playback session: playlist selection,
// the fetched catalog, vibe filtering, shuffle selection and play/pause
// transitions.
//
// A Controller is not safe for concurrent use. All methods must be called
// from one event loop (the TUI update loop or a Loop); fetches run elsewhere
// and report back through ApplyItems and ApplyPlaylists.
package session

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/tessro/vibe/internal/core"
	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/log"
	"github.com/tessro/vibe/internal/metrics"
	"github.com/tessro/vibe/internal/vibe"
)

// Errors returned by SelectItem and SetVibeFilter.
var (
	ErrInvalidRef = errors.New("item reference was not issued by this session")
	ErrStaleRef   = errors.New("item reference belongs to a previous catalog")
)

const (
	fetchPlaylistsFailed = "Failed to fetch playlists"
	fetchVideosFailed    = "Failed to fetch videos"
)

// Controller owns the session state.
type Controller struct {
	base   context.Context
	intn   func(n int) int
	logger zerolog.Logger

	playlists        []core.PlaylistSummary
	playlistsSeq     uint64
	playlistsCancel  context.CancelFunc
	playlistsLoading bool
	playlistsErr     string

	selected     string
	hasSelection bool

	catalog      []core.CatalogItem
	catalogGen   uint64
	itemsSeq     uint64
	itemsCancel  context.CancelFunc
	itemsLoading bool
	itemsErr     string

	filter vibe.Vibe

	current *core.CatalogItem
	playing bool
	loadGen uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithRand sets the uniform source used for shuffle. intn must return a
// value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(c *Controller) { c.intn = intn }
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithContext sets the parent context of every fetch.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.base = ctx }
}

// New creates a controller with no playlist selected and the All filter.
func New(opts ...Option) *Controller {
	c := &Controller{
		base:   context.Background(),
		intn:   rand.IntN,
		logger: log.WithComponent("session"),
		filter: vibe.All,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadPlaylists starts a fetch of the account's playlists.
func (c *Controller) LoadPlaylists() PlaylistsFetch {
	if c.playlistsCancel != nil {
		c.playlistsCancel()
	}
	c.playlistsSeq++
	c.playlistsLoading = true
	c.playlistsErr = ""

	ctx, cancel := context.WithCancel(c.base)
	c.playlistsCancel = cancel
	return PlaylistsFetch{Seq: c.playlistsSeq, ctx: ctx}
}

// ApplyPlaylists applies a completed playlists fetch. Results of superseded
// fetches are discarded and reported as not applied.
func (c *Controller) ApplyPlaylists(res PlaylistsResult) bool {
	if res.Seq != c.playlistsSeq {
		c.logger.Debug().Uint64(log.FieldSeq, res.Seq).Msg("discarding stale playlists result")
		return false
	}
	c.playlistsLoading = false
	c.playlistsCancel = nil

	if res.Err != nil {
		c.playlistsErr = verrors.UserMessage(res.Err, fetchPlaylistsFailed)
		c.logger.Warn().Err(res.Err).Msg("playlists fetch failed")
		return true
	}
	c.playlists = res.Playlists
	c.logger.Debug().Int(log.FieldCount, len(res.Playlists)).Msg("playlists loaded")
	return true
}

// SelectPlaylist chooses a playlist and starts fetching its items. The
// catalog and playback state are cleared immediately and any outstanding
// catalog fetch is cancelled.
func (c *Controller) SelectPlaylist(id string) ItemsFetch {
	c.cancelItems()
	c.selected = id
	c.hasSelection = true
	c.clearCatalog()
	c.itemsErr = ""
	c.itemsLoading = true

	c.itemsSeq++
	ctx, cancel := context.WithCancel(c.base)
	c.itemsCancel = cancel

	c.logger.Debug().Str(log.FieldPlaylistID, id).Uint64(log.FieldSeq, c.itemsSeq).Msg("playlist selected")
	return ItemsFetch{Seq: c.itemsSeq, PlaylistID: id, ctx: ctx}
}

// ApplyItems applies a completed catalog fetch if it answers the latest
// SelectPlaylist. On failure the error is recorded and the selection kept.
func (c *Controller) ApplyItems(res ItemsResult) bool {
	if !c.hasSelection || res.Seq != c.itemsSeq {
		c.logger.Debug().Uint64(log.FieldSeq, res.Seq).Str(log.FieldPlaylistID, res.PlaylistID).
			Msg("discarding stale catalog result")
		return false
	}
	c.itemsLoading = false
	c.itemsCancel = nil

	if res.Err != nil {
		c.itemsErr = verrors.UserMessage(res.Err, fetchVideosFailed)
		c.logger.Warn().Err(res.Err).Str(log.FieldPlaylistID, res.PlaylistID).Msg("catalog fetch failed")
		return true
	}
	c.catalog = res.Items
	c.catalogGen++
	c.logger.Debug().Int(log.FieldCount, len(res.Items)).Str(log.FieldPlaylistID, res.PlaylistID).Msg("catalog loaded")
	return true
}

// DeselectPlaylist returns to playlist selection.
func (c *Controller) DeselectPlaylist() {
	c.cancelItems()
	c.itemsSeq++
	c.itemsLoading = false
	c.itemsErr = ""
	c.selected = ""
	c.hasSelection = false
	c.clearCatalog()
}

// SetVibeFilter changes the active filter. The current item and playing
// flag are left alone even if the item no longer passes the filter.
func (c *Controller) SetVibeFilter(v vibe.Vibe) error {
	if !v.Valid() {
		return vibe.ErrUnknownVibe
	}
	c.filter = v
	return nil
}

// PlayRandom starts a uniformly random item of the filtered view. It is a
// no-op returning false when the view is empty.
func (c *Controller) PlayRandom() bool {
	view := c.filteredIndices()
	if len(view) == 0 {
		return false
	}
	idx := view[c.intn(len(view))]
	c.start(&c.catalog[idx])
	return true
}

// SelectItem starts the referenced item.
func (c *Controller) SelectItem(ref ItemRef) error {
	if ref.IsZero() {
		return ErrInvalidRef
	}
	if ref.gen != c.catalogGen {
		return ErrStaleRef
	}
	c.start(&c.catalog[ref.index])
	return nil
}

// TogglePlayPause flips the playing flag when an item is loaded.
func (c *Controller) TogglePlayPause() {
	if c.current == nil {
		return
	}
	c.playing = !c.playing
}

// OnPlaybackEnded auto-advances with a fresh random draw from the current
// filtered view. The finished item may be drawn again.
func (c *Controller) OnPlaybackEnded() bool { return c.PlayRandom() }

// SkipForward draws a random item. There is no play history.
func (c *Controller) SkipForward() bool { return c.PlayRandom() }

// SkipBackward draws a random item. There is no play history.
func (c *Controller) SkipBackward() bool { return c.PlayRandom() }

// Filter returns the active vibe filter.
func (c *Controller) Filter() vibe.Vibe { return c.filter }

// Filtered returns refs to the items passing the active filter, in catalog
// order.
func (c *Controller) Filtered() []ItemRef {
	view := c.filteredIndices()
	refs := make([]ItemRef, len(view))
	for i, idx := range view {
		refs[i] = c.ref(idx)
	}
	return refs
}

// Catalog returns refs to every catalog item in catalog order.
func (c *Controller) Catalog() []ItemRef {
	refs := make([]ItemRef, len(c.catalog))
	for i := range c.catalog {
		refs[i] = c.ref(i)
	}
	return refs
}

// FilteredRef returns the i-th item of the filtered view.
func (c *Controller) FilteredRef(i int) (ItemRef, bool) {
	view := c.filteredIndices()
	if i < 0 || i >= len(view) {
		return ItemRef{}, false
	}
	return c.ref(view[i]), true
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() State {
	// catalog slices are replaced wholesale, never mutated in place, so the
	// snapshot shares them.
	s := State{
		Playlists:          c.playlists,
		PlaylistsLoading:   c.playlistsLoading,
		SelectedPlaylistID: c.selected,
		HasSelection:       c.hasSelection,
		Catalog:            c.catalog,
		Filter:             c.filter,
		FilteredCount:      len(c.filteredIndices()),
		Playing:            c.playing && c.current != nil,
		LoadGen:            c.loadGen,
		Loading:            c.loading(),
		Error:              c.errorText(),
	}
	if c.current != nil {
		item := *c.current
		s.Current = &item
	}
	return s
}

// Close cancels any outstanding fetches.
func (c *Controller) Close() {
	c.cancelItems()
	if c.playlistsCancel != nil {
		c.playlistsCancel()
		c.playlistsCancel = nil
	}
}

// loading is the flag of the current screen: the catalog fetch once a
// playlist is selected, the playlists fetch before that.
func (c *Controller) loading() bool {
	if c.hasSelection {
		return c.itemsLoading
	}
	return c.playlistsLoading
}

// errorText is the error of the current screen, chosen like loading.
func (c *Controller) errorText() string {
	if c.hasSelection {
		return c.itemsErr
	}
	return c.playlistsErr
}

func (c *Controller) start(item *core.CatalogItem) {
	c.current = item
	c.playing = true
	c.loadGen++
	metrics.IncItemStarted(string(c.filter))
	c.logger.Debug().Str(log.FieldMediaID, item.MediaResourceID).Msg("item started")
}

func (c *Controller) ref(idx int) ItemRef {
	return ItemRef{gen: c.catalogGen, index: idx, item: c.catalog[idx]}
}

func (c *Controller) filteredIndices() []int {
	view := make([]int, 0, len(c.catalog))
	for i, item := range c.catalog {
		if vibe.Matches(c.filter, item.Title, item.Description) {
			view = append(view, i)
		}
	}
	return view
}

func (c *Controller) clearCatalog() {
	c.catalog = nil
	c.catalogGen++
	c.current = nil
	c.playing = false
}

func (c *Controller) cancelItems() {
	if c.itemsCancel != nil {
		c.itemsCancel()
		c.itemsCancel = nil
	}
}
