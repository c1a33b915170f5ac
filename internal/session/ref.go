package session

import (
	"github.com/tessro/vibe/internal/core"
	"github.com/tessro/vibe/internal/vibe"
)

// ItemRef is a handle to an item of the controller's current catalog.
// Only the controller mints refs, so SelectItem never sees an item that did
// not come from its own view.
type ItemRef struct {
	gen   uint64
	index int
	item  core.CatalogItem
}

// Item returns the referenced catalog item.
func (r ItemRef) Item() core.CatalogItem { return r.item }

// Vibes classifies the referenced item.
func (r ItemRef) Vibes() []vibe.Vibe {
	return vibe.Classify(r.item.Title, r.item.Description)
}

// IsZero reports whether r was not obtained from a controller.
func (r ItemRef) IsZero() bool { return r.gen == 0 }
