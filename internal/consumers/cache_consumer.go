package consumers

import (
	"context"

	"schwarzesbrett/app/ad"
	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/events"

	"go.uber.org/zap"
)

// CategoryLevels drops cached category levels.
type CategoryLevels interface {
	Invalidate(ctx context.Context, parentIDs ...int64)
	InvalidateAround(ctx context.Context, parentID int64)
}

// SettingsCache drops a cached site setting.
type SettingsCache interface {
	Invalidate(ctx context.Context, key string)
}

// CacheEventHandler keeps the shared caches in step with writes made by
// other processes.
type CacheEventHandler struct {
	ads        cache.Cache[domain.Ad]
	categories CategoryLevels
	settings   SettingsCache
}

func NewCacheEventHandler(ads cache.Cache[domain.Ad], categories CategoryLevels, settings SettingsCache) *CacheEventHandler {
	return &CacheEventHandler{
		ads:        ads,
		categories: categories,
		settings:   settings,
	}
}

func (h *CacheEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	zap.L().Debug("Cache event received",
		zap.String("event", event.Event),
		zap.String("version", event.Version),
		zap.String("traceId", event.TraceID),
	)

	switch event.Event {
	case events.AdUpdatedEvent, events.AdCreatedEvent:
		var payload events.AdPayload
		if err := event.DecodePayload(&payload); err != nil {
			return err
		}
		h.ads.Invalidate(ctx, ad.CacheKey(payload.ID))

	case events.AdDeletedEvent, events.AdExpiredEvent:
		var payload events.AdRefPayload
		if err := event.DecodePayload(&payload); err != nil {
			return err
		}
		h.ads.Invalidate(ctx, ad.CacheKey(payload.AdID))

	case events.AdImageUploadedEvent, events.AdImageDeletedEvent:
		var payload events.AdImagePayload
		if err := event.DecodePayload(&payload); err != nil {
			return err
		}
		h.ads.Invalidate(ctx, ad.CacheKey(payload.AdID))

	case events.CategoryCreatedEvent, events.CategoryUpdatedEvent, events.CategoryDeletedEvent:
		var payload events.CategoryPayload
		if err := event.DecodePayload(&payload); err != nil {
			return err
		}
		h.categories.InvalidateAround(ctx, payload.ParentID)
		if event.Event != events.CategoryCreatedEvent {
			h.categories.Invalidate(ctx, payload.ID)
		}
		if event.Event == events.CategoryUpdatedEvent {
			// the old parent is not carried; its level may still list the category
			h.categories.Invalidate(ctx, domain.RootCategoryID)
		}

	case events.SiteSettingChangedEvent:
		var payload events.SiteSettingPayload
		if err := event.DecodePayload(&payload); err != nil {
			return err
		}
		h.settings.Invalidate(ctx, payload.Key)

	default:
		zap.L().Debug("Ignoring event", zap.String("event", event.Event))
	}

	return nil
}

// Bindings lists the routing keys HandleEvent reacts to.
func Bindings() map[string][]string {
	return map[string][]string{
		events.AdExchange: {
			"ad.created.v1",
			"ad.updated.v1",
			"ad.deleted.v1",
			"ad.expired.v1",
			"ad.image.*.v1",
		},
		events.CategoryExchange: {"category.*.v1"},
		events.UserExchange:     {"site.setting.changed.v1"},
	}
}
