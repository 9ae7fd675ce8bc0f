package categorytree

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"schwarzesbrett/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepository struct {
	children map[int64][]domain.Category
	calls    map[int64]int
	err      error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		children: make(map[int64][]domain.Category),
		calls:    make(map[int64]int),
	}
}

func (f *fakeRepository) add(id, parent int64, name string) {
	f.children[parent] = append(f.children[parent], domain.Category{ID: id, ParentID: parent, Name: name})
	for p, list := range f.children {
		for i := range list {
			list[i].ChildCount = len(f.children[list[i].ID])
		}
		f.children[p] = list
	}
}

func (f *fakeRepository) RootCategories(ctx context.Context) ([]domain.Category, error) {
	return f.SubCategories(ctx, domain.RootCategoryID)
}

func (f *fakeRepository) SubCategories(_ context.Context, parentID int64) ([]domain.Category, error) {
	f.calls[parentID]++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Category(nil), f.children[parentID]...), nil
}

// vehicles(1) -> cars(2) -> vans(3); vehicles -> bikes(4), bikes -> road(5); pets(6)
func sampleRepository() *fakeRepository {
	repo := newFakeRepository()
	repo.add(1, 0, "Vehicles")
	repo.add(6, 0, "Pets")
	repo.add(2, 1, "Cars")
	repo.add(4, 1, "Bikes")
	repo.add(3, 2, "Vans")
	repo.add(5, 4, "Road")
	return repo
}

func initTree(t *testing.T, repo Repository) *Tree {
	t.Helper()
	tree := New(repo, zap.NewNop())
	require.NoError(t, tree.Init(context.Background()))
	return tree
}

func ids(nodes []Node) []int64 {
	out := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestTree_Init(t *testing.T) {
	tree := initTree(t, sampleRepository())

	assert.Equal(t, []int64{1, 6}, ids(tree.Children(domain.RootCategoryID)))
	assert.Equal(t, []int64{domain.RootCategoryID}, ids(tree.Breadcrumb()))

	vehicles := tree.Children(1)
	require.Len(t, vehicles, 1)
	assert.True(t, vehicles[0].Placeholder)

	assert.Empty(t, tree.Children(6))
	pets, _ := tree.Node(6)
	assert.Equal(t, CollapsedKnown, pets.State())
}

func TestTree_InitError(t *testing.T) {
	repo := sampleRepository()
	repo.err = errors.New("db down")

	err := New(repo, zap.NewNop()).Init(context.Background())

	assert.ErrorContains(t, err, "db down")
}

func TestTree_ExpandReplacesPlaceholder(t *testing.T) {
	repo := newFakeRepository()
	repo.add(1, 0, "Home")
	repo.add(10, 1, "Garden")
	repo.add(11, 1, "Kitchen")
	repo.add(12, 1, "Tools")
	tree := initTree(t, repo)

	require.NoError(t, tree.Expand(context.Background(), 1))

	children := tree.Children(1)
	assert.Equal(t, []int64{10, 11, 12}, ids(children))
	for _, c := range children {
		assert.False(t, c.Placeholder)
	}
	home, _ := tree.Node(1)
	assert.Equal(t, Expanded, home.State())
}

func TestTree_ExpandTwiceFetchesOnce(t *testing.T) {
	repo := sampleRepository()
	tree := initTree(t, repo)

	require.NoError(t, tree.Expand(context.Background(), 1))
	require.NoError(t, tree.Expand(context.Background(), 1))

	assert.Equal(t, 1, repo.calls[1])
}

func TestTree_ExpandLeafDoesNotFetch(t *testing.T) {
	repo := sampleRepository()
	tree := initTree(t, repo)

	require.NoError(t, tree.Expand(context.Background(), 6))

	assert.Zero(t, repo.calls[6])
	pets, _ := tree.Node(6)
	assert.Equal(t, Expanded, pets.State())
}

func TestTree_ExpandUnknownIsNoop(t *testing.T) {
	repo := sampleRepository()
	tree := initTree(t, repo)

	require.NoError(t, tree.Expand(context.Background(), 99))

	assert.Zero(t, repo.calls[99])
}

func TestTree_ExpandConcurrentlyEmptied(t *testing.T) {
	repo := sampleRepository()
	tree := initTree(t, repo)
	repo.children[1] = nil

	require.NoError(t, tree.Expand(context.Background(), 1))

	assert.Empty(t, tree.Children(1))
}

func TestTree_ExpandErrorKeepsPlaceholder(t *testing.T) {
	repo := sampleRepository()
	tree := initTree(t, repo)
	repo.err = errors.New("timeout")

	require.Error(t, tree.Expand(context.Background(), 1))

	children := tree.Children(1)
	require.Len(t, children, 1)
	assert.True(t, children[0].Placeholder)
}

func TestTree_SelectBuildsBreadcrumb(t *testing.T) {
	ctx := context.Background()
	tree := initTree(t, sampleRepository())
	require.NoError(t, tree.Expand(ctx, 1))
	require.NoError(t, tree.Expand(ctx, 2))

	require.True(t, tree.Select(3))

	assert.Equal(t, []int64{0, 1, 2, 3}, ids(tree.Breadcrumb()))
	assert.Equal(t, int64(3), tree.Selected())

	require.True(t, tree.Select(1))
	assert.Equal(t, []int64{0, 1}, ids(tree.Breadcrumb()))
}

func TestTree_SelectUnknownKeepsBreadcrumb(t *testing.T) {
	ctx := context.Background()
	tree := initTree(t, sampleRepository())
	require.NoError(t, tree.Expand(ctx, 1))
	require.True(t, tree.Select(2))

	assert.False(t, tree.Select(3))
	assert.False(t, tree.Select(404))

	assert.Equal(t, []int64{0, 1, 2}, ids(tree.Breadcrumb()))
	assert.Equal(t, int64(2), tree.Selected())
}

func TestTree_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := sampleRepository()
	tree := initTree(t, repo)
	require.NoError(t, tree.Expand(ctx, 1))
	require.True(t, tree.Select(4))

	raw, err := json.Marshal(tree.Snapshot())
	require.NoError(t, err)
	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(raw, &snapshot))

	restored, err := Restore(repo, snapshot, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 1, 4}, ids(restored.Breadcrumb()))
	assert.Equal(t, tree.Len(), restored.Len())
	require.NoError(t, restored.Expand(ctx, 4))
	assert.Equal(t, []int64{5}, ids(restored.Children(4)))
}

func TestRestore_WithoutRoot(t *testing.T) {
	_, err := Restore(newFakeRepository(), Snapshot{}, zap.NewNop())

	assert.Error(t, err)
}
