package category

import (
	"context"
	"strconv"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/cache"
)

// CachedRepository serves category levels from a cache keyed by parent id.
// Writes go straight to the wrapped repository and drop the affected levels.
type CachedRepository struct {
	Repository
	levels cache.Cache[[]domain.Category]
}

func NewCachedRepository(repository Repository, levels cache.Cache[[]domain.Category]) *CachedRepository {
	return &CachedRepository{
		Repository: repository,
		levels:     levels,
	}
}

// LevelKey is the cache key of the children of parentID.
func LevelKey(parentID int64) string {
	return strconv.FormatInt(parentID, 10)
}

func (r *CachedRepository) RootCategories(ctx context.Context) ([]domain.Category, error) {
	return r.SubCategories(ctx, domain.RootCategoryID)
}

func (r *CachedRepository) SubCategories(ctx context.Context, parentID int64) ([]domain.Category, error) {
	if categories, ok := r.levels.Get(ctx, LevelKey(parentID)); ok {
		return categories, nil
	}

	var (
		categories []domain.Category
		err        error
	)
	if parentID == domain.RootCategoryID {
		categories, err = r.Repository.RootCategories(ctx)
	} else {
		categories, err = r.Repository.SubCategories(ctx, parentID)
	}
	if err != nil {
		return nil, err
	}

	r.levels.Put(ctx, LevelKey(parentID), categories)
	return categories, nil
}

func (r *CachedRepository) CreateCategory(ctx context.Context, name, description string, parentID int64) (domain.Category, error) {
	c, err := r.Repository.CreateCategory(ctx, name, description, parentID)
	if err == nil {
		r.InvalidateAround(ctx, parentID)
	}
	return c, err
}

// UpdateCategory drops the levels around both the old and the new parent.
func (r *CachedRepository) UpdateCategory(ctx context.Context, c domain.Category) error {
	previous, err := r.Repository.GetCategoryByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := r.Repository.UpdateCategory(ctx, c); err != nil {
		return err
	}
	r.InvalidateAround(ctx, previous.ParentID)
	r.InvalidateAround(ctx, c.ParentID)
	return nil
}

func (r *CachedRepository) DeleteCategory(ctx context.Context, id int64) error {
	previous, err := r.Repository.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.Repository.DeleteCategory(ctx, id); err != nil {
		return err
	}
	r.InvalidateAround(ctx, previous.ParentID)
	r.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the cached child levels of the given parents.
func (r *CachedRepository) Invalidate(ctx context.Context, parentIDs ...int64) {
	for _, id := range parentIDs {
		r.levels.Invalidate(ctx, LevelKey(id))
	}
}

// InvalidateAround drops the children of parentID and the level holding
// parentID itself, whose child count changed.
func (r *CachedRepository) InvalidateAround(ctx context.Context, parentID int64) {
	r.Invalidate(ctx, parentID)
	if parentID == domain.RootCategoryID {
		return
	}
	parent, err := r.Repository.GetCategoryByID(ctx, parentID)
	if err != nil {
		// unknown grandparent: fall back to the top level
		r.Invalidate(ctx, domain.RootCategoryID)
		return
	}
	r.Invalidate(ctx, parent.ParentID)
}
