package category

import (
	"context"

	"schwarzesbrett/app/view"
	"schwarzesbrett/domain"
)

type Repository interface {
	RootCategories(ctx context.Context) ([]domain.Category, error)
	SubCategories(ctx context.Context, parentID int64) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (domain.Category, error)
	CategoryPath(ctx context.Context, id int64) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name, description string, parentID int64) (domain.Category, error)
	UpdateCategory(ctx context.Context, c domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// AdFilter narrows the ad view of a browsing session to a category.
type AdFilter interface {
	FilterCategory(ctx context.Context, viewID string, categoryID int64) (*view.Response[domain.Ad], error)
}
