package category

import (
	"context"
	"errors"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/httperror"
)

type GetCategoryHandler struct {
	repository Repository
}

func NewGetCategoryHandler(repository Repository) *GetCategoryHandler {
	return &GetCategoryHandler{
		repository: repository,
	}
}

type GetCategoryRequest struct {
	ID int64 `params:"id"`
}

type GetCategoryResponse struct {
	Category      domain.Category   `json:"category"`
	Path          []domain.Category `json:"path"`
	SubCategories []domain.Category `json:"subCategories"`
}

func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*GetCategoryResponse, error) {
	path, err := h.repository.CategoryPath(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("category.show.not_found", "Category not found", nil)
		}
		return nil, httperror.InternalServerError(
			"category.show.failed",
			"Failed to retrieve category",
			nil,
		)
	}

	children, err := h.repository.SubCategories(ctx, req.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.show.children_failed",
			"Failed to retrieve sub categories",
			nil,
		)
	}

	return &GetCategoryResponse{
		Category:      path[len(path)-1],
		Path:          path,
		SubCategories: children,
	}, nil
}

type GetCategoriesRequest struct {
	ParentID int64 `query:"parent"`
}

type GetCategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// GetCategoriesHandler lists one level of the category tree.
type GetCategoriesHandler struct {
	repository Repository
}

func NewGetCategoriesHandler(repository Repository) *GetCategoriesHandler {
	return &GetCategoriesHandler{
		repository: repository,
	}
}

func (h GetCategoriesHandler) Handle(ctx context.Context, req *GetCategoriesRequest) (*GetCategoriesResponse, error) {
	categories, err := h.repository.SubCategories(ctx, req.ParentID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.index.failed",
			"Failed to retrieve categories",
			nil,
		)
	}

	return &GetCategoriesResponse{
		Categories: categories,
	}, nil
}
