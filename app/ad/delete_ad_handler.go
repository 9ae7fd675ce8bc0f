package ad

import (
	"context"
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"
)

type DeleteAdHandler struct {
	repository     Repository
	cache          cache.Cache[domain.Ad]
	eventPublisher events.Publisher
}

func NewDeleteAdHandler(repository Repository, adCache cache.Cache[domain.Ad], eventPublisher events.Publisher) *DeleteAdHandler {
	return &DeleteAdHandler{
		repository:     repository,
		cache:          adCache,
		eventPublisher: eventPublisher,
	}
}

type DeleteAdRequest struct {
	ID int64 `params:"id"`
}

type DeleteAdResponse struct {
}

// Handle lets the seller or an administrator delete an ad.
func (h DeleteAdHandler) Handle(ctx context.Context, req *DeleteAdRequest) (*DeleteAdResponse, error) {
	ad, err := h.repository.GetAd(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("ad.destroy.not_found", "Ad not found.", nil)
		}
		return nil, httperror.InternalServerError("ad.destroy.failed", "Failed to get ad.", nil)
	}

	userID := middleware.UserID(ctx)
	if ad.SellerID != userID && !middleware.IsAdmin(ctx) {
		return nil, httperror.Forbidden("ad.destroy.forbidden", "You are not authorized to delete this ad.", nil)
	}

	if err := h.repository.DeleteAd(ctx, ad.ID); err != nil {
		return nil, httperror.InternalServerError("ad.destroy.failed", "Failed to delete ad.", err)
	}
	h.cache.Invalidate(ctx, CacheKey(ad.ID))

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdDeletedEvent, events.AdRefPayload{
		AdID:       ad.ID,
		UserID:     userID,
		OccurredAt: time.Now(),
	})

	return &DeleteAdResponse{}, httperror.NoContent("ad.destroy.success", "Ad deleted successfully.", nil)
}
