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

	"github.com/shopspring/decimal"
)

type UpdateAdHandler struct {
	repository     Repository
	cache          cache.Cache[domain.Ad]
	eventPublisher events.Publisher
	now            func() time.Time
}

type UpdateAdRequest struct {
	ID          int64            `params:"id" validate:"required,gt=0"`
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=10000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	PriceType   *string          `json:"priceType,omitempty" validate:"omitempty,oneof=fixed negotiable free"`
	CategoryID  *int64           `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
	City        *string          `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode  *string          `json:"postalCode,omitempty" validate:"omitempty,max=16"`
	EndsAt      *time.Time       `json:"endsAt,omitempty"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=active sold"`
}

type UpdateAdResponse struct {
	Ad domain.Ad `json:"ad"`
}

func NewUpdateAdHandler(repository Repository, adCache cache.Cache[domain.Ad], eventPublisher events.Publisher) *UpdateAdHandler {
	return &UpdateAdHandler{
		repository:     repository,
		cache:          adCache,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

func (h UpdateAdHandler) Handle(ctx context.Context, req *UpdateAdRequest) (*UpdateAdResponse, error) {
	if err := validateRequest("ad.update", req); err != nil {
		return nil, err
	}

	ad, err := h.repository.GetAd(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.NotFound("ad.update.not_found", "Ad not found", nil)
		}
		return nil, httperror.InternalServerError("ad.update.failed", "Failed to get ad", nil)
	}
	if ad.SellerID != middleware.UserID(ctx) {
		return nil, httperror.Forbidden("ad.update.forbidden", "You are not authorized to update this ad.", nil)
	}

	if req.Title != nil {
		ad.Title = *req.Title
	}
	if req.Description != nil {
		ad.Description = *req.Description
	}
	if req.Price != nil {
		ad.Price = *req.Price
	}
	if req.PriceType != nil {
		ad.PriceType = *req.PriceType
	}
	if req.City != nil {
		ad.City = *req.City
	}
	if req.PostalCode != nil {
		ad.PostalCode = *req.PostalCode
	}
	if req.Status != nil {
		ad.Status = *req.Status
	}
	if req.EndsAt != nil {
		ad.EndsAt = req.EndsAt.UTC()
		if !ad.EndsAt.After(ad.ReleasedAt) {
			return nil, httperror.BadRequest("ad.update.invalid_runtime", "The end must be after the release", nil)
		}
	}
	if req.CategoryID != nil && *req.CategoryID != ad.CategoryID {
		if _, err := h.repository.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, httperror.BadRequest("ad.update.unknown_category", "Category does not exist", nil)
			}
			return nil, httperror.InternalServerError("ad.update.category_failed", "Failed to get category", nil)
		}
		ad.CategoryID = *req.CategoryID
	}
	if err := checkPricing("ad.update", ad.PriceType, ad.Price); err != nil {
		return nil, err
	}

	if err := h.repository.UpdateAd(ctx, ad); err != nil {
		return nil, httperror.InternalServerError(
			"ad.update.update_failed",
			"An error occurred while updating the ad",
			nil,
		)
	}
	h.cache.Invalidate(ctx, CacheKey(ad.ID))

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdUpdatedEvent, adPayload(ad, h.now()))

	return &UpdateAdResponse{
		Ad: ad,
	}, nil
}
