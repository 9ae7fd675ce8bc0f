package viewstate

import (
	"context"
	"testing"

	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/categorytree"
	"schwarzesbrett/pkg/listing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewID(t *testing.T) {
	id := uuid.New().String()
	assert.Equal(t, id, ViewID(id))

	fresh := ViewID("not-a-uuid")
	_, err := uuid.Parse(fresh)
	require.NoError(t, err)
	assert.NotEqual(t, fresh, ViewID(""))
}

func TestStore_ListingsAreKeyedPerViewAndName(t *testing.T) {
	ctx := context.Background()
	store := NewStore(cache.NewMemory[Listing](0), cache.NewMemory[categorytree.Snapshot](0))

	state := Listing{Criteria: listing.NewCriteria("title", 20), LastPageNumber: 4}
	store.SaveListing(ctx, "v1", "ads:all", state)

	got, ok := store.Listing(ctx, "v1", "ads:all")
	require.True(t, ok)
	assert.Equal(t, state, got)

	_, ok = store.Listing(ctx, "v1", "ads:own")
	assert.False(t, ok)
	_, ok = store.Listing(ctx, "v2", "ads:all")
	assert.False(t, ok)

	store.DropListing(ctx, "v1", "ads:all")
	_, ok = store.Listing(ctx, "v1", "ads:all")
	assert.False(t, ok)
}

func TestStore_Trees(t *testing.T) {
	ctx := context.Background()
	store := NewStore(cache.NewMemory[Listing](0), cache.NewMemory[categorytree.Snapshot](0))

	store.SaveTree(ctx, "v1", categorytree.Snapshot{Selected: 3})

	got, ok := store.Tree(ctx, "v1")
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Selected)
}
