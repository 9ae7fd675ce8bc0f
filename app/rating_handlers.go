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

type RateUserHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewRateUserHandler(repository Repository, eventPublisher events.Publisher) *RateUserHandler {
	return &RateUserHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type RateUserRequest struct {
	UserID  int64  `params:"id" validate:"required,gt=0"`
	Stars   int    `json:"stars" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type RateUserResponse struct {
	Rating domain.Rating `json:"rating"`
}

// Handle records the caller's rating of a user; rating again replaces it.
func (h *RateUserHandler) Handle(ctx context.Context, req *RateUserRequest) (*RateUserResponse, error) {
	if err := validateRequest("ratings.create", req); err != nil {
		return nil, err
	}

	raterID := middleware.UserID(ctx)
	if raterID == req.UserID {
		return nil, httperror.BadRequest("ratings.create.self", "You cannot rate yourself", nil)
	}

	if _, err := h.repository.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("ratings.create.not_found", "User not found", nil)
		}
		return nil, httperror.InternalServerError("ratings.create.failed", "Failed to get user", nil)
	}

	rating, err := h.repository.UpsertRating(ctx, domain.Rating{
		RaterID: raterID,
		RatedID: req.UserID,
		Stars:   req.Stars,
		Comment: req.Comment,
	})
	if err != nil {
		return nil, httperror.InternalServerError("ratings.create.failed", "Failed to save rating", nil)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.UserExchange, events.UserRatedEvent, events.UserRatedPayload{
		RaterID:    raterID,
		RatedID:    req.UserID,
		Stars:      req.Stars,
		OccurredAt: time.Now(),
	})

	return &RateUserResponse{Rating: rating}, nil
}

type GetRatingsHandler struct {
	repository Repository
}

func NewGetRatingsHandler(repository Repository) *GetRatingsHandler {
	return &GetRatingsHandler{repository: repository}
}

type GetRatingsRequest struct {
	UserID int64 `params:"id"`
}

type GetRatingsResponse struct {
	Ratings []domain.Rating `json:"ratings"`
}

func (h *GetRatingsHandler) Handle(ctx context.Context, req *GetRatingsRequest) (*GetRatingsResponse, error) {
	ratings, err := h.repository.GetRatings(ctx, req.UserID)
	if err != nil {
		return nil, httperror.InternalServerError("ratings.index.failed", "Failed to retrieve ratings", nil)
	}
	return &GetRatingsResponse{Ratings: ratings}, nil
}
