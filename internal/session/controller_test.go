package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tessro/vibe/internal/core"
	verrors "github.com/tessro/vibe/internal/errors"
	"github.com/tessro/vibe/internal/vibe"
)

type fakeSource struct {
	mu        sync.Mutex
	playlists []core.PlaylistSummary
	items     map[string][]core.CatalogItem
	uploads   []core.CatalogItem
	err       error
	calls     []string
}

func (f *fakeSource) ListPlaylists(ctx context.Context) ([]core.PlaylistSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "playlists")
	return f.playlists, f.err
}

func (f *fakeSource) ListPlaylistItems(ctx context.Context, id string) ([]core.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "items:"+id)
	if f.err != nil {
		return nil, f.err
	}
	return f.items[id], nil
}

func (f *fakeSource) ListOwnUploads(ctx context.Context) ([]core.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "uploads")
	return f.uploads, f.err
}

func item(id, title string) core.CatalogItem {
	return core.CatalogItem{ID: id, Title: title, MediaResourceID: "v-" + id}
}

var testCatalog = []core.CatalogItem{
	item("a", "Rainy Forest Walk"),
	item("b", "Chill Lofi Jazz Piano Mix"),
	item("c", "Dance Remix 2024"),
	item("d", "Symphony No. 5"),
}

func newController(opts ...Option) *Controller {
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return New(opts...)
}

// loaded returns a controller whose catalog holds items for playlist "PL1".
func loaded(t *testing.T, items []core.CatalogItem, opts ...Option) *Controller {
	t.Helper()
	c := newController(opts...)
	f := c.SelectPlaylist("PL1")
	if !c.ApplyItems(ItemsResult{Seq: f.Seq, PlaylistID: "PL1", Items: items}) {
		t.Fatal("ApplyItems() = false for the latest fetch")
	}
	return c
}

func ids(refs []ItemRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Item().ID
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	c := newController()
	s := c.Snapshot()
	if s.View() != core.ViewNoPlaylist {
		t.Errorf("View() = %v, want no_playlist", s.View())
	}
	if s.Filter != vibe.All {
		t.Errorf("Filter = %q, want All", s.Filter)
	}
	if s.Playback() != core.StatusStopped {
		t.Errorf("Playback() = %v, want stopped", s.Playback())
	}
}

func TestSelectPlaylistSuccess(t *testing.T) {
	c := newController()
	f := c.SelectPlaylist("PL1")

	s := c.Snapshot()
	if !s.Loading || s.View() != core.ViewLoading {
		t.Fatalf("after SelectPlaylist: Loading=%v View=%v", s.Loading, s.View())
	}

	src := &fakeSource{items: map[string][]core.CatalogItem{"PL1": testCatalog}}
	if !c.ApplyItems(f.Run(src)) {
		t.Fatal("ApplyItems() = false")
	}

	s = c.Snapshot()
	if s.Loading || s.Error != "" || s.View() != core.ViewReady {
		t.Errorf("after fetch: Loading=%v Error=%q View=%v", s.Loading, s.Error, s.View())
	}
	if !reflect.DeepEqual(s.Catalog, testCatalog) {
		t.Errorf("Catalog = %v, want %v", s.Catalog, testCatalog)
	}
}

func TestSelectUploadsUsesOwnUploads(t *testing.T) {
	c := newController()
	src := &fakeSource{uploads: testCatalog[:1]}

	f := c.SelectPlaylist(core.UploadsPlaylistID)
	c.ApplyItems(f.Run(src))

	if got := src.calls; !reflect.DeepEqual(got, []string{"uploads"}) {
		t.Errorf("calls = %v, want [uploads]", got)
	}
	if n := len(c.Snapshot().Catalog); n != 1 {
		t.Errorf("len(Catalog) = %d, want 1", n)
	}
}

func TestFetchFailureLeavesSafeState(t *testing.T) {
	c := newController()
	f := c.SelectPlaylist("PL1")
	c.ApplyItems(ItemsResult{Seq: f.Seq, PlaylistID: "PL1", Err: verrors.New(verrors.ErrNotFound, "Uploads playlist not found")})

	s := c.Snapshot()
	if s.Loading {
		t.Error("Loading = true after failure")
	}
	if s.Error != "Uploads playlist not found" {
		t.Errorf("Error = %q", s.Error)
	}
	if len(s.Catalog) != 0 {
		t.Errorf("Catalog = %v, want empty", s.Catalog)
	}
	if !s.HasSelection || s.SelectedPlaylistID != "PL1" {
		t.Errorf("selection = %q (%v), want PL1 kept", s.SelectedPlaylistID, s.HasSelection)
	}
}

func TestFetchFailureWithoutMessageUsesFallback(t *testing.T) {
	c := newController()
	f := c.SelectPlaylist("PL1")
	c.ApplyItems(ItemsResult{Seq: f.Seq, Err: errors.New("")})

	if got := c.Snapshot().Error; got != "Failed to fetch videos" {
		t.Errorf("Error = %q, want fallback", got)
	}
}

func TestPlaylistSwitchClearsState(t *testing.T) {
	c := loaded(t, testCatalog)
	c.PlayRandom()
	next := c.SelectPlaylist("PL2")

	s := c.Snapshot()
	if len(s.Catalog) != 0 || s.Current != nil || s.Playing || s.Error != "" {
		t.Errorf("state not cleared: %+v", s)
	}
	if !s.Loading || s.SelectedPlaylistID != "PL2" {
		t.Errorf("Loading=%v Selected=%q, want loading PL2", s.Loading, s.SelectedPlaylistID)
	}
	if next.Context().Err() != nil {
		t.Error("the latest fetch must not be cancelled")
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	c := newController()
	first := c.SelectPlaylist("PL1")
	second := c.SelectPlaylist("PL2")

	if first.Context().Err() == nil {
		t.Error("superseded fetch context was not cancelled")
	}

	// PL2 resolves first, then the slower PL1 response arrives.
	if !c.ApplyItems(ItemsResult{Seq: second.Seq, PlaylistID: "PL2", Items: testCatalog[:2]}) {
		t.Fatal("ApplyItems(latest) = false")
	}
	if c.ApplyItems(ItemsResult{Seq: first.Seq, PlaylistID: "PL1", Items: testCatalog}) {
		t.Fatal("ApplyItems(stale) = true")
	}

	s := c.Snapshot()
	if s.SelectedPlaylistID != "PL2" || len(s.Catalog) != 2 {
		t.Errorf("stale result clobbered state: selected=%q catalog=%d", s.SelectedPlaylistID, len(s.Catalog))
	}
}

func TestResultAfterDeselectIsDiscarded(t *testing.T) {
	c := newController()
	f := c.SelectPlaylist("PL1")
	c.DeselectPlaylist()

	if f.Context().Err() == nil {
		t.Error("fetch not cancelled by DeselectPlaylist")
	}
	if c.ApplyItems(ItemsResult{Seq: f.Seq, PlaylistID: "PL1", Items: testCatalog}) {
		t.Error("ApplyItems() applied a result after deselect")
	}
	if s := c.Snapshot(); s.View() != core.ViewNoPlaylist || len(s.Catalog) != 0 {
		t.Errorf("View=%v catalog=%d, want no_playlist and empty", s.View(), len(s.Catalog))
	}
}

func TestDeselectClearsPlayback(t *testing.T) {
	c := loaded(t, testCatalog)
	c.PlayRandom()
	c.DeselectPlaylist()

	s := c.Snapshot()
	if s.HasSelection || s.Current != nil || s.Playing || len(s.Catalog) != 0 {
		t.Errorf("DeselectPlaylist left state behind: %+v", s)
	}
}

func TestFilterAllIsIdentity(t *testing.T) {
	c := loaded(t, testCatalog)
	if err := c.SetVibeFilter(vibe.Nature); err != nil {
		t.Fatal(err)
	}
	if err := c.SetVibeFilter(vibe.All); err != nil {
		t.Fatal(err)
	}

	want := []string{"a", "b", "c", "d"}
	if got := ids(c.Filtered()); !reflect.DeepEqual(got, want) {
		t.Errorf("Filtered() = %v, want %v", got, want)
	}
}

func TestFilterCorrectness(t *testing.T) {
	c := loaded(t, testCatalog)
	for _, v := range vibe.Filters()[1:] {
		if err := c.SetVibeFilter(v); err != nil {
			t.Fatal(err)
		}
		got := map[string]bool{}
		for _, r := range c.Filtered() {
			got[r.Item().ID] = true
		}
		for _, it := range testCatalog {
			classified := false
			for _, cv := range vibe.Classify(it.Title, it.Description) {
				if cv == v {
					classified = true
				}
			}
			if got[it.ID] != classified {
				t.Errorf("filter %s: item %s in view = %v, classified = %v", v, it.ID, got[it.ID], classified)
			}
		}
	}
}

func TestSetVibeFilterRejectsUnknown(t *testing.T) {
	c := newController()
	if err := c.SetVibeFilter("Sad"); !errors.Is(err, vibe.ErrUnknownVibe) {
		t.Errorf("SetVibeFilter(Sad) error = %v", err)
	}
	if c.Filter() != vibe.All {
		t.Errorf("Filter() = %q after rejected change", c.Filter())
	}
}

func TestFilterChangeKeepsCurrentItem(t *testing.T) {
	c := loaded(t, testCatalog, WithRand(func(int) int { return 2 }))
	c.PlayRandom() // "Dance Remix 2024", Uptempo only

	if err := c.SetVibeFilter(vibe.Nature); err != nil {
		t.Fatal(err)
	}

	s := c.Snapshot()
	if s.Current == nil || s.Current.ID != "c" || !s.Playing {
		t.Errorf("current item changed by filter: %+v playing=%v", s.Current, s.Playing)
	}
	if s.FilteredCount != 1 {
		t.Errorf("FilteredCount = %d, want 1", s.FilteredCount)
	}
}

func TestPlayRandomBounds(t *testing.T) {
	for n := 0; n < 4; n++ {
		t.Run(fmt.Sprintf("draw %d", n), func(t *testing.T) {
			c := loaded(t, testCatalog, WithRand(func(int) int { return n }))
			if !c.PlayRandom() {
				t.Fatal("PlayRandom() = false on non-empty view")
			}
			s := c.Snapshot()
			if s.Current == nil || s.Current.ID != testCatalog[n].ID || !s.Playing {
				t.Errorf("Current = %+v playing=%v, want %s", s.Current, s.Playing, testCatalog[n].ID)
			}
		})
	}
}

func TestPlayRandomDrawsFromFilteredView(t *testing.T) {
	var gotN int
	c := loaded(t, testCatalog, WithRand(func(n int) int { gotN = n; return n - 1 }))
	if err := c.SetVibeFilter(vibe.Chill); err != nil {
		t.Fatal(err)
	}
	c.PlayRandom()

	if gotN != 1 {
		t.Errorf("rand drawn over %d items, want 1", gotN)
	}
	if s := c.Snapshot(); s.Current.ID != "b" {
		t.Errorf("Current = %s, want b", s.Current.ID)
	}
}

func TestPlayRandomEmptyViewIsNoop(t *testing.T) {
	c := loaded(t, testCatalog, WithRand(func(int) int { return 0 }))
	c.PlayRandom()
	before := c.Snapshot()

	// Empty catalog.
	c2 := loaded(t, nil, WithRand(func(int) int { t.Fatal("rand called on empty view"); return 0 }))
	if c2.PlayRandom() {
		t.Error("PlayRandom() = true on empty catalog")
	}
	if s := c2.Snapshot(); s.Current != nil || s.Playing {
		t.Errorf("empty PlayRandom changed state: %+v", s)
	}

	// Nature view of a catalog with no nature items.
	c.catalog = testCatalog[1:]
	c.catalogGen++
	if err := c.SetVibeFilter(vibe.Nature); err != nil {
		t.Fatal(err)
	}
	if c.PlayRandom() {
		t.Error("PlayRandom() = true on empty filtered view")
	}
	after := c.Snapshot()
	if after.Current.ID != before.Current.ID || after.LoadGen != before.LoadGen {
		t.Errorf("current item touched by empty draw: before %s after %s", before.Current.ID, after.Current.ID)
	}
}

func TestPlayRandomIsUniform(t *testing.T) {
	c := loaded(t, testCatalog)
	counts := map[string]int{}
	const draws = 4000
	for i := 0; i < draws; i++ {
		c.PlayRandom()
		counts[c.Snapshot().Current.ID]++
	}
	for _, it := range testCatalog {
		if n := counts[it.ID]; n < draws/4-250 || n > draws/4+250 {
			t.Errorf("item %s drawn %d times of %d", it.ID, n, draws)
		}
	}
}

func TestOnPlaybackEndedAdvances(t *testing.T) {
	items := testCatalog[:3]
	draws := []int{1, 1, 0}
	next := 0
	c := loaded(t, items, WithRand(func(n int) int {
		if n != 3 {
			t.Fatalf("rand over %d items, want 3", n)
		}
		d := draws[next]
		next++
		return d
	}))

	c.PlayRandom() // b
	gen := c.Snapshot().LoadGen

	c.OnPlaybackEnded() // b again
	s := c.Snapshot()
	if s.Current.ID != "b" || !s.Playing {
		t.Errorf("after ended: current=%s playing=%v", s.Current.ID, s.Playing)
	}
	if s.LoadGen == gen {
		t.Error("repeating an item must bump LoadGen so the widget reloads it")
	}

	c.OnPlaybackEnded() // a
	if s := c.Snapshot(); s.Current.ID != "a" || !s.Playing {
		t.Errorf("after second ended: current=%s playing=%v", s.Current.ID, s.Playing)
	}
}

func TestSkipIsRandom(t *testing.T) {
	calls := 0
	c := loaded(t, testCatalog, WithRand(func(n int) int { calls++; return 0 }))
	c.SkipForward()
	c.SkipBackward()
	if calls != 2 {
		t.Errorf("rand calls = %d, want 2", calls)
	}
}

func TestTogglePlayPause(t *testing.T) {
	c := loaded(t, testCatalog)

	c.TogglePlayPause()
	if s := c.Snapshot(); s.Playing || s.Playback() != core.StatusStopped {
		t.Errorf("toggle without item: playing=%v status=%v", s.Playing, s.Playback())
	}

	c.PlayRandom()
	c.TogglePlayPause()
	if got := c.Snapshot().Playback(); got != core.StatusPaused {
		t.Errorf("Playback() = %v, want paused", got)
	}
	c.TogglePlayPause()
	if got := c.Snapshot().Playback(); got != core.StatusPlaying {
		t.Errorf("Playback() = %v, want playing", got)
	}
}

func TestSelectItem(t *testing.T) {
	c := loaded(t, testCatalog)
	refs := c.Filtered()

	if err := c.SelectItem(refs[3]); err != nil {
		t.Fatalf("SelectItem() error = %v", err)
	}
	s := c.Snapshot()
	if s.Current.ID != "d" || !s.Playing {
		t.Errorf("Current = %s playing=%v, want d playing", s.Current.ID, s.Playing)
	}

	ref, ok := c.FilteredRef(1)
	if !ok || ref.Item().ID != "b" {
		t.Fatalf("FilteredRef(1) = %v, %v", ref.Item().ID, ok)
	}
	if _, ok := c.FilteredRef(9); ok {
		t.Error("FilteredRef(9) ok = true")
	}
}

func TestSelectItemRejectsForeignRefs(t *testing.T) {
	c := loaded(t, testCatalog)
	old := c.Catalog()[0]

	if err := c.SelectItem(ItemRef{}); !errors.Is(err, ErrInvalidRef) {
		t.Errorf("SelectItem(zero) error = %v, want ErrInvalidRef", err)
	}

	f := c.SelectPlaylist("PL2")
	c.ApplyItems(ItemsResult{Seq: f.Seq, PlaylistID: "PL2", Items: testCatalog[:1]})

	if err := c.SelectItem(old); !errors.Is(err, ErrStaleRef) {
		t.Errorf("SelectItem(stale) error = %v, want ErrStaleRef", err)
	}
	if s := c.Snapshot(); s.Current != nil {
		t.Errorf("stale ref selected %+v", s.Current)
	}
}

func TestItemRefVibes(t *testing.T) {
	c := loaded(t, testCatalog)
	got := c.Catalog()[1].Vibes()
	want := []vibe.Vibe{vibe.Jazzy, vibe.Chill}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Vibes() = %v, want %v", got, want)
	}
}

func TestLoadPlaylists(t *testing.T) {
	c := newController()
	src := &fakeSource{playlists: []core.PlaylistSummary{{ID: "PL1", Title: "Mix"}}}

	f := c.LoadPlaylists()
	if !c.Snapshot().Loading {
		t.Error("Loading = false while playlists are fetched")
	}
	c.ApplyPlaylists(f.Run(src))

	s := c.Snapshot()
	if s.Loading || len(s.Playlists) != 1 || s.Playlists[0].Title != "Mix" {
		t.Errorf("after LoadPlaylists: %+v", s)
	}
}

func TestLoadPlaylistsFailureAndStale(t *testing.T) {
	c := newController()
	first := c.LoadPlaylists()
	second := c.LoadPlaylists()

	if c.ApplyPlaylists(PlaylistsResult{Seq: first.Seq, Playlists: []core.PlaylistSummary{{ID: "old"}}}) {
		t.Error("stale playlists result applied")
	}
	c.ApplyPlaylists(PlaylistsResult{Seq: second.Seq, Err: verrors.New(verrors.ErrUnauthorized, "Unauthorized")})

	s := c.Snapshot()
	if s.Loading || s.Error != "Unauthorized" || len(s.Playlists) != 0 {
		t.Errorf("after failed LoadPlaylists: %+v", s)
	}
}

func TestCloseCancelsFetches(t *testing.T) {
	c := newController()
	items := c.SelectPlaylist("PL1")
	pls := c.LoadPlaylists()
	c.Close()

	if items.Context().Err() == nil || pls.Context().Err() == nil {
		t.Error("Close() left fetches running")
	}
}

func TestErrorsBelongToTheirScreen(t *testing.T) {
	c := newController()
	pls := c.LoadPlaylists()
	items := c.SelectPlaylist("PL1")

	c.ApplyItems(ItemsResult{Seq: items.Seq, PlaylistID: "PL1", Items: testCatalog})
	c.ApplyPlaylists(PlaylistsResult{Seq: pls.Seq, Err: errors.New("boom")})

	s := c.Snapshot()
	if s.View() != core.ViewReady || s.Error != "" {
		t.Errorf("player view shows playlists error: view=%v Error=%q", s.View(), s.Error)
	}

	c.DeselectPlaylist()
	if got := c.Snapshot().Error; got != "boom" {
		t.Errorf("playlist screen Error = %q, want the playlists failure", got)
	}
}

func TestLoadPlaylistsKeepsCatalogError(t *testing.T) {
	c := newController()
	f := c.SelectPlaylist("PL1")
	c.ApplyItems(ItemsResult{Seq: f.Seq, PlaylistID: "PL1", Err: verrors.New(verrors.ErrNotFound, "Channel not found")})

	c.LoadPlaylists()
	if got := c.Snapshot().Error; got != "Channel not found" {
		t.Errorf("Error = %q after LoadPlaylists, want the catalog failure", got)
	}
}
