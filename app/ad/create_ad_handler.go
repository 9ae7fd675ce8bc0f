package ad

import (
	"context"
	"errors"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/internal/middleware"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"

	"github.com/shopspring/decimal"
)

type CreateAdHandler struct {
	repository     Repository
	eventPublisher events.Publisher
	now            func() time.Time
}

type CreateAdRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=10000"`
	Price       decimal.Decimal `json:"price"`
	PriceType   string          `json:"priceType" validate:"required,oneof=fixed negotiable free"`
	CategoryID  int64           `json:"categoryId" validate:"required,gt=0"`
	City        string          `json:"city" validate:"max=100"`
	PostalCode  string          `json:"postalCode" validate:"max=16"`
	ReleasedAt  *time.Time      `json:"releasedAt,omitempty"`
	EndsAt      *time.Time      `json:"endsAt,omitempty"`
}

type CreateAdResponse struct {
	Ad domain.Ad `json:"ad"`
}

func NewCreateAdHandler(repository Repository, eventPublisher events.Publisher) *CreateAdHandler {
	return &CreateAdHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

func (h CreateAdHandler) Handle(ctx context.Context, req *CreateAdRequest) (*CreateAdResponse, error) {
	if err := validateRequest("ad.create", req); err != nil {
		return nil, err
	}
	if err := checkPricing("ad.create", req.PriceType, req.Price); err != nil {
		return nil, err
	}

	releasedAt := h.now().UTC()
	if req.ReleasedAt != nil {
		releasedAt = req.ReleasedAt.UTC()
	}
	endsAt := releasedAt.Add(DefaultRuntime)
	if req.EndsAt != nil {
		endsAt = req.EndsAt.UTC()
	}
	if !endsAt.After(releasedAt) {
		return nil, httperror.BadRequest("ad.create.invalid_runtime", "The end must be after the release", nil)
	}

	if _, err := h.repository.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperror.BadRequest("ad.create.unknown_category", "Category does not exist", nil)
		}
		return nil, httperror.InternalServerError("ad.create.category_failed", "Failed to get category", err)
	}

	ad, err := h.repository.CreateAd(ctx, domain.Ad{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		PriceType:   req.PriceType,
		CategoryID:  req.CategoryID,
		SellerID:    middleware.UserID(ctx),
		City:        req.City,
		PostalCode:  req.PostalCode,
		Status:      domain.AdStatusActive,
		ReleasedAt:  releasedAt,
		EndsAt:      endsAt,
	})
	if err != nil {
		return nil, httperror.InternalServerError(
			"ad.create.create_failed",
			"An error occurred while creating the ad",
			nil,
		)
	}

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.AdExchange, events.AdCreatedEvent, adPayload(ad, h.now()))

	return &CreateAdResponse{
		Ad: ad,
	}, nil
}

func adPayload(ad domain.Ad, now time.Time) events.AdPayload {
	return events.AdPayload{
		ID:         ad.ID,
		Title:      ad.Title,
		SellerID:   ad.SellerID,
		CategoryID: ad.CategoryID,
		Price:      ad.Price,
		PriceType:  ad.PriceType,
		Status:     ad.Status,
		EndsAt:     ad.EndsAt,
		OccurredAt: now,
	}
}
