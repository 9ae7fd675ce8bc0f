package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/httperror"
	"schwarzesbrett/pkg/listing"

	"go.uber.org/zap"
)

const maxItemsPerPage = 100

// SiteSettings reads administrator settings through a cache.
type SiteSettings struct {
	repository   Repository
	cache        cache.Cache[string]
	itemsPerPage int
}

// NewSiteSettings falls back to itemsPerPage when no valid setting is stored.
func NewSiteSettings(repository Repository, settingsCache cache.Cache[string], itemsPerPage int) *SiteSettings {
	if itemsPerPage < 1 {
		itemsPerPage = listing.DefaultItemsPerPage
	}
	return &SiteSettings{
		repository:   repository,
		cache:        settingsCache,
		itemsPerPage: itemsPerPage,
	}
}

func (s *SiteSettings) Get(ctx context.Context, key string) (string, bool) {
	if value, ok := s.cache.Get(ctx, key); ok {
		return value, true
	}

	setting, err := s.repository.GetSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			zap.L().Warn("Failed to read site setting", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}

	s.cache.Put(ctx, key, setting.Value)
	return setting.Value, true
}

func (s *SiteSettings) Invalidate(ctx context.Context, key string) {
	s.cache.Invalidate(ctx, key)
}

// ItemsPerPage returns the rows per listing page.
func (s *SiteSettings) ItemsPerPage(ctx context.Context) int {
	value, ok := s.Get(ctx, domain.SettingItemsPerPage)
	if !ok {
		return s.itemsPerPage
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return s.itemsPerPage
	}
	return min(n, maxItemsPerPage)
}

type GetSettingsHandler struct {
	repository Repository
}

func NewGetSettingsHandler(repository Repository) *GetSettingsHandler {
	return &GetSettingsHandler{repository: repository}
}

type GetSettingsRequest struct {
}

type GetSettingsResponse struct {
	Settings []domain.SiteSetting `json:"settings"`
}

func (h *GetSettingsHandler) Handle(ctx context.Context, _ *GetSettingsRequest) (*GetSettingsResponse, error) {
	settings, err := h.repository.GetSettings(ctx)
	if err != nil {
		return nil, httperror.InternalServerError("admin.settings.index.failed", "Failed to retrieve settings", nil)
	}
	return &GetSettingsResponse{Settings: settings}, nil
}

type PutSettingHandler struct {
	repository     Repository
	settings       *SiteSettings
	eventPublisher events.Publisher
}

func NewPutSettingHandler(repository Repository, settings *SiteSettings, eventPublisher events.Publisher) *PutSettingHandler {
	return &PutSettingHandler{
		repository:     repository,
		settings:       settings,
		eventPublisher: eventPublisher,
	}
}

type PutSettingRequest struct {
	Key   string `params:"key" validate:"required,max=64"`
	Value string `json:"value" validate:"required,max=1000"`
}

type PutSettingResponse struct {
	Setting domain.SiteSetting `json:"setting"`
}

func (h *PutSettingHandler) Handle(ctx context.Context, req *PutSettingRequest) (*PutSettingResponse, error) {
	if err := validateRequest("admin.settings.update", req); err != nil {
		return nil, err
	}

	if req.Key == domain.SettingItemsPerPage {
		n, err := strconv.Atoi(req.Value)
		if err != nil || n < 1 || n > maxItemsPerPage {
			return nil, httperror.BadRequest("admin.settings.update.invalid_value", "items_per_page must be between 1 and 100", nil)
		}
	}

	setting, err := h.repository.PutSetting(ctx, req.Key, req.Value)
	if err != nil {
		return nil, httperror.InternalServerError("admin.settings.update.failed", "Failed to save setting", nil)
	}
	h.settings.Invalidate(ctx, req.Key)

	events.Emit(ctx, h.eventPublisher, events.AdDomain, events.UserExchange, events.SiteSettingChangedEvent, events.SiteSettingPayload{
		Key:        req.Key,
		OccurredAt: time.Now(),
	})

	return &PutSettingResponse{Setting: setting}, nil
}
