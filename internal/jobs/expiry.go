// Package jobs holds the periodic maintenance work run by the worker.
package jobs

import (
	"context"
	"fmt"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/events"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AdExpirer flips active ads past their end to expired.
type AdExpirer interface {
	ExpireAds(ctx context.Context, now time.Time) ([]domain.Ad, error)
}

// ExpiryJob marks ads expired on a cron schedule and announces each one.
type ExpiryJob struct {
	cron           *cron.Cron
	spec           string
	repository     AdExpirer
	eventPublisher events.Publisher
	now            func() time.Time
}

func NewExpiryJob(spec string, repository AdExpirer, eventPublisher events.Publisher) *ExpiryJob {
	return &ExpiryJob{
		cron:           cron.New(),
		spec:           spec,
		repository:     repository,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// Start registers the job, runs it once and starts the schedule. The job
// stops firing when ctx is done.
func (j *ExpiryJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.Run(ctx) }); err != nil {
		return fmt.Errorf("schedule ad expiry %q: %w", j.spec, err)
	}

	j.cron.Start()
	zap.L().Info("Ad expiry scheduled", zap.String("spec", j.spec))

	go j.Run(ctx)
	return nil
}

// Stop waits for a running expiry to finish.
func (j *ExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	zap.L().Info("Ad expiry stopped")
}

// Run performs one expiry pass and returns the number of ads expired.
func (j *ExpiryJob) Run(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	now := j.now()
	expired, err := j.repository.ExpireAds(ctx, now)
	if err != nil {
		zap.L().Error("Ad expiry failed", zap.Error(err))
		return 0
	}

	for _, ad := range expired {
		events.Emit(ctx, j.eventPublisher, events.AdDomain, events.AdExchange, events.AdExpiredEvent, events.AdRefPayload{
			AdID:       ad.ID,
			UserID:     ad.SellerID,
			OccurredAt: now,
		})
	}

	if len(expired) > 0 {
		zap.L().Info("Ads expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}
