package category

import (
	"context"
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"

	"github.com/go-playground/validator/v10"
)

func validateRequest(code string, req any) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return httperror.BadRequest(
				code+".validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return httperror.InternalServerError(
			code+".validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}
	return nil
}

type CreateCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewCreateCategoryHandler(repository Repository, eventPublisher events.Publisher) *CreateCategoryHandler {
	return &CreateCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    int64  `json:"parentId" validate:"min=0"`
}

type CategoryResponse struct {
	Category domain.Category `json:"category"`
}

func (h CreateCategoryHandler) Handle(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	if err := validateRequest("category.create", req); err != nil {
		return nil, err
	}

	if req.ParentID != domain.RootCategoryID {
		if _, err := h.repository.GetCategoryByID(ctx, req.ParentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, httperror.BadRequest("category.create.unknown_parent", "Parent category does not exist", nil)
			}
			return nil, httperror.InternalServerError("category.create.failed", "Failed to get parent category", nil)
		}
	}

	c, err := h.repository.CreateCategory(ctx, req.Name, req.Description, req.ParentID)
	if err != nil {
		return nil, httperror.InternalServerError("category.create.failed", "Failed to create category", nil)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.CategoryExchange, events.CategoryCreatedEvent, events.CategoryPayload{
		ID:         c.ID,
		ParentID:   c.ParentID,
		Name:       c.Name,
		OccurredAt: time.Now(),
	})

	return &CategoryResponse{Category: c}, nil
}

type UpdateCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewUpdateCategoryHandler(repository Repository, eventPublisher events.Publisher) *UpdateCategoryHandler {
	return &UpdateCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type UpdateCategoryRequest struct {
	ID          int64   `params:"id" validate:"required,gt=0"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ParentID    *int64  `json:"parentId,omitempty" validate:"omitempty,min=0"`
}

func (h UpdateCategoryHandler) Handle(ctx context.Context, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	if err := validateRequest("category.update", req); err != nil {
		return nil, err
	}

	c, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("category.update.not_found", "Category not found", nil)
		}
		return nil, httperror.InternalServerError("category.update.failed", "Failed to get category", nil)
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.ParentID != nil && *req.ParentID != c.ParentID {
		if err := h.checkMove(ctx, c.ID, *req.ParentID); err != nil {
			return nil, err
		}
		c.ParentID = *req.ParentID
	}

	if err := h.repository.UpdateCategory(ctx, c); err != nil {
		return nil, httperror.InternalServerError("category.update.failed", "Failed to update category", nil)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.CategoryExchange, events.CategoryUpdatedEvent, events.CategoryPayload{
		ID:         c.ID,
		ParentID:   c.ParentID,
		Name:       c.Name,
		OccurredAt: time.Now(),
	})

	return &CategoryResponse{Category: c}, nil
}

// checkMove rejects parents that do not exist or lie inside the moved subtree.
func (h UpdateCategoryHandler) checkMove(ctx context.Context, id, parentID int64) error {
	if parentID == domain.RootCategoryID {
		return nil
	}
	path, err := h.repository.CategoryPath(ctx, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperror.BadRequest("category.update.unknown_parent", "Parent category does not exist", nil)
		}
		return httperror.InternalServerError("category.update.failed", "Failed to get parent category", nil)
	}
	for _, ancestor := range path {
		if ancestor.ID == id {
			return httperror.BadRequest("category.update.cycle", "A category cannot be moved below itself", nil)
		}
	}
	return nil
}

type DeleteCategoryHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewDeleteCategoryHandler(repository Repository, eventPublisher events.Publisher) *DeleteCategoryHandler {
	return &DeleteCategoryHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type DeleteCategoryRequest struct {
	ID int64 `params:"id"`
}

type DeleteCategoryResponse struct {
}

func (h DeleteCategoryHandler) Handle(ctx context.Context, req *DeleteCategoryRequest) (*DeleteCategoryResponse, error) {
	c, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("category.destroy.not_found", "Category not found", nil)
		}
		return nil, httperror.InternalServerError("category.destroy.failed", "Failed to get category", nil)
	}
	if c.ChildCount > 0 {
		return nil, httperror.Conflict("category.destroy.has_children", "Delete the sub categories first", nil)
	}

	if err := h.repository.DeleteCategory(ctx, req.ID); err != nil {
		if errors.Is(err, domain.ErrInUse) {
			return nil, httperror.Conflict("category.destroy.in_use", "Category still has ads", nil)
		}
		return nil, httperror.InternalServerError("category.destroy.failed", "Failed to delete category", err)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.CategoryExchange, events.CategoryDeletedEvent, events.CategoryPayload{
		ID:         c.ID,
		ParentID:   c.ParentID,
		OccurredAt: time.Now(),
	})

	return &DeleteCategoryResponse{}, httperror.NoContent("category.destroy.success", "Category deleted successfully.", nil)
}
