// Package viewstate keeps the per-view state of list views and category trees
// between requests. A view is identified by the client supplied View-ID.
package viewstate

import (
	"context"

	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/categorytree"
	"schwarzesbrett/pkg/listing"

	"github.com/google/uuid"
)

// Listing is the persisted state of one list view.
type Listing struct {
	Criteria       listing.Criteria `json:"criteria"`
	LastPageNumber int              `json:"lastPageNumber"`
}

// Store persists view state in an injected cache.
type Store struct {
	listings cache.Cache[Listing]
	trees    cache.Cache[categorytree.Snapshot]
}

func NewStore(listings cache.Cache[Listing], trees cache.Cache[categorytree.Snapshot]) *Store {
	return &Store{listings: listings, trees: trees}
}

// ViewID returns id when it is a valid UUID and a fresh one otherwise.
func ViewID(id string) string {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return uuid.New().String()
}

func listingKey(viewID, name string) string {
	return viewID + ":" + name
}

// Listing returns the stored state of the named list inside a view.
func (s *Store) Listing(ctx context.Context, viewID, name string) (Listing, bool) {
	return s.listings.Get(ctx, listingKey(viewID, name))
}

func (s *Store) SaveListing(ctx context.Context, viewID, name string, state Listing) {
	s.listings.Put(ctx, listingKey(viewID, name), state)
}

func (s *Store) DropListing(ctx context.Context, viewID, name string) {
	s.listings.Invalidate(ctx, listingKey(viewID, name))
}

func (s *Store) Tree(ctx context.Context, viewID string) (categorytree.Snapshot, bool) {
	return s.trees.Get(ctx, viewID)
}

func (s *Store) SaveTree(ctx context.Context, viewID string, snapshot categorytree.Snapshot) {
	s.trees.Put(ctx, viewID, snapshot)
}
