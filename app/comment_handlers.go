package app

import (
	"context"
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"
)

type CreateCommentHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewCreateCommentHandler(repository Repository, eventPublisher events.Publisher) *CreateCommentHandler {
	return &CreateCommentHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type CreateCommentRequest struct {
	AdID    int64  `params:"id" validate:"required,gt=0"`
	Content string `json:"content" validate:"required,max=2000"`
}

type CreateCommentResponse struct {
	Comment domain.AdComment `json:"comment"`
}

func (c *CreateCommentHandler) Handle(ctx context.Context, req *CreateCommentRequest) (*CreateCommentResponse, error) {
	if err := validateRequest("comments.create", req); err != nil {
		return nil, err
	}

	ad, err := c.repository.GetAd(ctx, req.AdID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("comments.create.not_found", "Ad not found", nil)
		}

		return nil, httperror.InternalServerError("comments.create.internal_error", "Failed to get ad", err)
	}

	userID := middleware.UserID(ctx)

	comment, err := c.repository.CreateComment(ctx, ad.ID, userID, req.Content)
	if err != nil {
		return nil, httperror.InternalServerError("comments.create.internal_error", "Failed to create comment", err)
	}

	events.Emit(ctx, c.eventPublisher, events.AdDomain, events.AdExchange, events.AdCommentCreatedEvent, events.AdCommentPayload{
		ID:         comment.ID,
		AdID:       ad.ID,
		AuthorID:   userID,
		Content:    comment.Content,
		OccurredAt: time.Now(),
	})

	return &CreateCommentResponse{
		Comment: comment,
	}, nil
}

type GetCommentsHandler struct {
	repository Repository
}

func NewGetCommentsHandler(repository Repository) *GetCommentsHandler {
	return &GetCommentsHandler{
		repository: repository,
	}
}

type GetCommentsRequest struct {
	ID       int64 `params:"id"`
	Page     int   `query:"page"`
	PageSize int   `query:"limit"`
}

type GetCommentsResponse struct {
	Comments   []domain.AdComment `json:"comments"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalItems int                `json:"totalItems"`
	TotalPages int                `json:"totalPages"`
}

func (h *GetCommentsHandler) Handle(ctx context.Context, req *GetCommentsRequest) (*GetCommentsResponse, error) {
	page, pageSize := pageBounds(req.Page, req.PageSize, 10)

	comments, err := h.repository.GetAdComments(ctx, req.ID, page, pageSize)
	if err != nil {
		return nil, httperror.InternalServerError(
			"comments.index.failed",
			"Comments repository failed to retrieve comments",
			nil,
		)
	}

	totalItems, err := h.repository.CountAdComments(ctx, req.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"comments.count_comments.failed",
			"Failed to count comments",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetCommentsResponse{
		Comments:   comments,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

type DeleteCommentHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewDeleteCommentHandler(repository Repository, eventPublisher events.Publisher) *DeleteCommentHandler {
	return &DeleteCommentHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type DeleteCommentRequest struct {
	AdID      int64 `params:"id"`
	CommentID int64 `params:"commentId"`
}

type DeleteCommentResponse struct {
}

// Handle lets the author or an administrator remove a comment.
func (h *DeleteCommentHandler) Handle(ctx context.Context, req *DeleteCommentRequest) (*DeleteCommentResponse, error) {
	comment, err := h.repository.GetCommentByID(ctx, req.CommentID)
	if err != nil || comment.AdID != req.AdID {
		return nil, httperror.NotFound("comments.destroy.not_found", "Comment not found.", nil)
	}

	if comment.AuthorID != middleware.UserID(ctx) && !middleware.IsAdmin(ctx) {
		return nil, httperror.Forbidden("comments.destroy.forbidden", "You are not authorized to delete this comment.", nil)
	}

	if err := h.repository.DeleteComment(ctx, comment.ID); err != nil {
		return nil, httperror.InternalServerError("comments.destroy.failed", "Failed to delete comment.", err)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdCommentDeletedEvent, events.AdCommentPayload{
		ID:         comment.ID,
		AdID:       comment.AdID,
		AuthorID:   comment.AuthorID,
		OccurredAt: time.Now(),
	})

	return &DeleteCommentResponse{}, httperror.NoContent("comments.destroy.success", "Comment deleted successfully.", nil)
}
