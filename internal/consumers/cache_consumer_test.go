package consumers

import (
	"context"
	"testing"
	"time"

	"schwarzesbrett/app/ad"
	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLevels struct {
	dropped []int64
	around  []int64
}

func (r *recordingLevels) Invalidate(_ context.Context, parentIDs ...int64) {
	r.dropped = append(r.dropped, parentIDs...)
}

func (r *recordingLevels) InvalidateAround(_ context.Context, parentID int64) {
	r.around = append(r.around, parentID)
}

type recordingSettings struct {
	keys []string
}

func (r *recordingSettings) Invalidate(_ context.Context, key string) {
	r.keys = append(r.keys, key)
}

func newHandler() (*CacheEventHandler, *cache.Memory[domain.Ad], *recordingLevels, *recordingSettings) {
	ads := cache.NewMemory[domain.Ad](0)
	levels := &recordingLevels{}
	settings := &recordingSettings{}
	return NewCacheEventHandler(ads, levels, settings), ads, levels, settings
}

func TestHandleEvent_AdEventsDropDetail(t *testing.T) {
	ctx := context.Background()
	handler, ads, _, _ := newHandler()

	cases := []struct {
		name    string
		payload any
	}{
		{events.AdUpdatedEvent, events.AdPayload{ID: 5}},
		{events.AdDeletedEvent, events.AdRefPayload{AdID: 5}},
		{events.AdExpiredEvent, events.AdRefPayload{AdID: 5}},
		{events.AdImageUploadedEvent, events.AdImagePayload{ID: 1, AdID: 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ads.Put(ctx, ad.CacheKey(5), domain.Ad{ID: 5})

			event := events.NewEvent(tc.name, events.EventVersionV1, tc.payload, events.Headers{})
			require.NoError(t, handler.HandleEvent(ctx, event))

			_, ok := ads.Get(ctx, ad.CacheKey(5))
			assert.False(t, ok)
		})
	}
}

func TestHandleEvent_CategoryEvents(t *testing.T) {
	ctx := context.Background()
	handler, _, levels, _ := newHandler()

	created := events.NewEvent(events.CategoryCreatedEvent, events.EventVersionV1,
		events.CategoryPayload{ID: 9, ParentID: 3, OccurredAt: time.Now()}, events.Headers{})
	require.NoError(t, handler.HandleEvent(ctx, created))
	assert.Equal(t, []int64{3}, levels.around)
	assert.Empty(t, levels.dropped)

	deleted := events.NewEvent(events.CategoryDeletedEvent, events.EventVersionV1,
		events.CategoryPayload{ID: 9, ParentID: 3}, events.Headers{})
	require.NoError(t, handler.HandleEvent(ctx, deleted))
	assert.Equal(t, []int64{3, 3}, levels.around)
	assert.Equal(t, []int64{9}, levels.dropped)
}

func TestHandleEvent_SettingChanged(t *testing.T) {
	handler, _, _, settings := newHandler()

	event := events.NewEvent(events.SiteSettingChangedEvent, events.EventVersionV1,
		events.SiteSettingPayload{Key: domain.SettingItemsPerPage}, events.Headers{})
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	assert.Equal(t, []string{domain.SettingItemsPerPage}, settings.keys)
}

func TestHandleEvent_MalformedPayload(t *testing.T) {
	handler, _, _, _ := newHandler()

	event := &events.Event{Event: events.AdDeletedEvent, Version: events.EventVersionV1, Payload: []byte(`"nope"`)}
	assert.Error(t, handler.HandleEvent(context.Background(), event))
}

func TestHandleEvent_UnknownEventIsAcked(t *testing.T) {
	handler, _, _, _ := newHandler()

	event := events.NewEvent(events.UserRatedEvent, events.EventVersionV1, events.UserRatedPayload{}, events.Headers{})
	assert.NoError(t, handler.HandleEvent(context.Background(), event))
}
