package category

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"testing"
	"time"

	"schwarzesbrett/app/view"
	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/categorytree"
	"schwarzesbrett/pkg/httperror"
	"schwarzesbrett/pkg/viewstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository keeps a category table in memory and counts level reads.
type fakeRepository struct {
	categories map[int64]domain.Category
	levelReads map[int64]int
	nextID     int64
}

func newFakeRepository() *fakeRepository {
	r := &fakeRepository{
		categories: map[int64]domain.Category{},
		levelReads: map[int64]int{},
		nextID:     100,
	}
	r.add(1, 0, "Elektronik")
	r.add(2, 1, "Telefone")
	r.add(3, 2, "Smartphones")
	r.add(4, 0, "Möbel")
	return r
}

func (r *fakeRepository) add(id, parent int64, name string) {
	r.categories[id] = domain.Category{ID: id, ParentID: parent, Name: name}
}

func (r *fakeRepository) withCounts(c domain.Category) domain.Category {
	c.ChildCount = 0
	for _, other := range r.categories {
		if other.ParentID == c.ID {
			c.ChildCount++
		}
	}
	return c
}

func (r *fakeRepository) RootCategories(ctx context.Context) ([]domain.Category, error) {
	return r.SubCategories(ctx, domain.RootCategoryID)
}

func (r *fakeRepository) SubCategories(_ context.Context, parentID int64) ([]domain.Category, error) {
	r.levelReads[parentID]++
	out := make([]domain.Category, 0)
	for _, c := range r.categories {
		if c.ParentID == parentID {
			out = append(out, r.withCounts(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepository) GetCategoryByID(_ context.Context, id int64) (domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return c, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return r.withCounts(c), nil
}

func (r *fakeRepository) CategoryPath(ctx context.Context, id int64) ([]domain.Category, error) {
	var path []domain.Category
	for current := id; current != domain.RootCategoryID; {
		c, err := r.GetCategoryByID(ctx, current)
		if err != nil {
			return nil, err
		}
		path = append([]domain.Category{c}, path...)
		current = c.ParentID
	}
	return path, nil
}

func (r *fakeRepository) CreateCategory(_ context.Context, name, description string, parentID int64) (domain.Category, error) {
	r.nextID++
	c := domain.Category{ID: r.nextID, Name: name, Description: description, ParentID: parentID}
	r.categories[c.ID] = c
	return c, nil
}

func (r *fakeRepository) UpdateCategory(_ context.Context, c domain.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *fakeRepository) DeleteCategory(_ context.Context, id int64) error {
	delete(r.categories, id)
	return nil
}

type recordingFilter struct {
	viewID     string
	categoryID int64
}

func (f *recordingFilter) FilterCategory(_ context.Context, viewID string, categoryID int64) (*view.Response[domain.Ad], error) {
	f.viewID = viewID
	f.categoryID = categoryID
	return &view.Response[domain.Ad]{ViewID: viewID, Items: []domain.Ad{}}, nil
}

func newStore() *viewstate.Store {
	return viewstate.NewStore(cache.NewMemory[viewstate.Listing](0), cache.NewMemory[categorytree.Snapshot](0))
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var httpErr *httperror.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
}

func TestCachedRepository_ServesLevelsFromCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	cached := NewCachedRepository(repo, cache.NewMemory[[]domain.Category](time.Minute))

	for i := 0; i < 3; i++ {
		roots, err := cached.RootCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, roots, 2)
	}
	assert.Equal(t, 1, repo.levelReads[domain.RootCategoryID])
}

func TestCachedRepository_CreateDropsAffectedLevels(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	cached := NewCachedRepository(repo, cache.NewMemory[[]domain.Category](time.Minute))

	_, err := cached.SubCategories(ctx, 1)
	require.NoError(t, err)
	roots, err := cached.RootCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, roots[1].ChildCount) // Möbel

	_, err = cached.CreateCategory(ctx, "Stühle", "", 4)
	require.NoError(t, err)

	roots, err = cached.RootCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, roots[1].ChildCount)
	assert.Equal(t, 2, repo.levelReads[domain.RootCategoryID])
	assert.Equal(t, 1, repo.levelReads[1])
}

func TestTree_InitExpandSelect(t *testing.T) {
	ctx := context.Background()
	filter := &recordingFilter{}
	h := NewGetCategoryTreeHandler(newFakeRepository(), newStore(), filter)

	res, err := h.Handle(ctx, &GetCategoryTreeRequest{Action: TreeActionInit})
	require.NoError(t, err)
	require.Len(t, res.Tree.Children, 2)

	electronics := res.Tree.Children[0]
	assert.Equal(t, "Elektronik", electronics.Name)
	assert.Equal(t, categorytree.CollapsedUnknown.String(), electronics.State)
	require.Len(t, electronics.Children, 1)
	assert.True(t, electronics.Children[0].Placeholder)

	furniture := res.Tree.Children[1]
	assert.Equal(t, categorytree.CollapsedKnown.String(), furniture.State)
	assert.Empty(t, furniture.Children)

	res, err = h.Handle(ctx, &GetCategoryTreeRequest{ViewID: res.ViewID, Action: TreeActionExpand, ID: 1})
	require.NoError(t, err)
	electronics = res.Tree.Children[0]
	require.Len(t, electronics.Children, 1)
	assert.Equal(t, "Telefone", electronics.Children[0].Name)

	res, err = h.Handle(ctx, &GetCategoryTreeRequest{ViewID: res.ViewID, Action: TreeActionSelect, ID: 2})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(2), res.Selected)
	assert.Equal(t, []Crumb{{ID: 0, Name: "root"}, {ID: 1, Name: "Elektronik"}, {ID: 2, Name: "Telefone"}}, res.Breadcrumb)
	assert.Equal(t, res.ViewID, filter.viewID)
	assert.Equal(t, int64(2), filter.categoryID)
	assert.NotNil(t, res.Ads)
}

func TestTree_SelectUnloadedIsNoop(t *testing.T) {
	ctx := context.Background()
	filter := &recordingFilter{}
	h := NewGetCategoryTreeHandler(newFakeRepository(), newStore(), filter)

	res, err := h.Handle(ctx, &GetCategoryTreeRequest{})
	require.NoError(t, err)

	res, err = h.Handle(ctx, &GetCategoryTreeRequest{ViewID: res.ViewID, Action: TreeActionSelect, ID: 3})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, int64(0), res.Selected)
	assert.Zero(t, filter.categoryID)
	assert.Nil(t, res.Ads)
}

func TestGetCategory_WithPath(t *testing.T) {
	res, err := NewGetCategoryHandler(newFakeRepository()).Handle(context.Background(), &GetCategoryRequest{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "Smartphones", res.Category.Name)
	require.Len(t, res.Path, 3)
	assert.Equal(t, "Elektronik", res.Path[0].Name)

	_, err = NewGetCategoryHandler(newFakeRepository()).Handle(context.Background(), &GetCategoryRequest{ID: 9})
	requireStatus(t, err, http.StatusNotFound)
}

func TestUpdateCategory_RejectsCycle(t *testing.T) {
	h := NewUpdateCategoryHandler(newFakeRepository(), nil)
	parent := int64(3)

	_, err := h.Handle(context.Background(), &UpdateCategoryRequest{ID: 1, ParentID: &parent})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestDeleteCategory(t *testing.T) {
	repo := newFakeRepository()
	h := NewDeleteCategoryHandler(repo, nil)

	_, err := h.Handle(context.Background(), &DeleteCategoryRequest{ID: 1})
	requireStatus(t, err, http.StatusConflict)

	_, err = h.Handle(context.Background(), &DeleteCategoryRequest{ID: 4})
	requireStatus(t, err, http.StatusNoContent)
	assert.NotContains(t, repo.categories, int64(4))
}

func TestCreateCategory_UnknownParent(t *testing.T) {
	h := NewCreateCategoryHandler(newFakeRepository(), nil)

	_, err := h.Handle(context.Background(), &CreateCategoryRequest{Name: "x", ParentID: 77})
	requireStatus(t, err, http.StatusBadRequest)

	res, err := h.Handle(context.Background(), &CreateCategoryRequest{Name: "Garten"})
	require.NoError(t, err)
	assert.Equal(t, domain.RootCategoryID, res.Category.ParentID)
}
