package ad

import (
	"context"
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"
)

type FollowAdHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewFollowAdHandler(repository Repository, eventPublisher events.Publisher) *FollowAdHandler {
	return &FollowAdHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type FollowAdRequest struct {
	ID int64 `params:"id"`
}

type FollowAdResponse struct {
	AdID      int64 `json:"adId"`
	Following bool  `json:"following"`
}

func (h FollowAdHandler) Handle(ctx context.Context, req *FollowAdRequest) (*FollowAdResponse, error) {
	if _, err := h.repository.GetAd(ctx, req.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("ad.follow.not_found", "Ad not found", nil)
		}
		return nil, httperror.InternalServerError("ad.follow.failed", "Failed to get ad", nil)
	}

	userID := middleware.UserID(ctx)
	if err := h.repository.FollowAd(ctx, userID, req.ID); err != nil {
		return nil, httperror.InternalServerError("ad.follow.failed", "Failed to follow ad", nil)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdFollowedEvent, events.AdRefPayload{
		AdID:       req.ID,
		UserID:     userID,
		OccurredAt: time.Now(),
	})

	return &FollowAdResponse{AdID: req.ID, Following: true}, nil
}

type UnfollowAdHandler struct {
	repository Repository
}

func NewUnfollowAdHandler(repository Repository) *UnfollowAdHandler {
	return &UnfollowAdHandler{repository: repository}
}

func (h UnfollowAdHandler) Handle(ctx context.Context, req *FollowAdRequest) (*FollowAdResponse, error) {
	if err := h.repository.UnfollowAd(ctx, middleware.UserID(ctx), req.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("ad.unfollow.not_following", "You do not follow this ad", nil)
		}
		return nil, httperror.InternalServerError("ad.unfollow.failed", "Failed to unfollow ad", nil)
	}
	return &FollowAdResponse{AdID: req.ID, Following: false}, nil
}
