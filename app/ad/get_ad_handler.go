package ad

import (
	"context"
	"errors"
	"strconv"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/httperror"

	"go.uber.org/zap"
)

type GetAdHandler struct {
	repository Repository
	cache      cache.Cache[domain.Ad]
}

func NewGetAdHandler(repository Repository, adCache cache.Cache[domain.Ad]) *GetAdHandler {
	return &GetAdHandler{
		repository: repository,
		cache:      adCache,
	}
}

type GetAdRequest struct {
	ID int64 `params:"id"`
}

type GetAdResponse struct {
	Ad     domain.Ad        `json:"ad"`
	Images []domain.AdImage `json:"images"`
}

// CacheKey is the key of an ad in the detail cache.
func CacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (h GetAdHandler) Handle(ctx context.Context, req *GetAdRequest) (*GetAdResponse, error) {
	ad, ok := h.cache.Get(ctx, CacheKey(req.ID))
	if !ok {
		var err error
		ad, err = h.repository.GetAd(ctx, req.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, httperror.NotFound("ad.show.not_found", "Ad not found", nil)
			}
			return nil, httperror.InternalServerError("ad.show.failed", "Failed to get ad", nil)
		}
		h.cache.Put(ctx, CacheKey(ad.ID), ad)
	}

	if err := h.repository.IncrementAdViews(ctx, ad.ID); err != nil {
		zap.L().Warn("Failed to count ad view", zap.Int64("adID", ad.ID), zap.Error(err))
	}

	images, err := h.repository.GetAdImages(ctx, ad.ID)
	if err != nil {
		return nil, httperror.InternalServerError("ad.show.images_failed", "Failed to get ad images", nil)
	}

	return &GetAdResponse{
		Ad:     ad,
		Images: images,
	}, nil
}
