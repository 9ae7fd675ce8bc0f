package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schwarzesbrett/infra/postgres"
	"schwarzesbrett/infra/rabbitmq"
	"schwarzesbrett/internal/consumers"
	"schwarzesbrett/internal/container"
	"schwarzesbrett/internal/jobs"
	"schwarzesbrett/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const poolStatsInterval = 30 * time.Second

func main() {
	appConfig := config.Read()
	logger := container.InitLogger(appConfig.LogLevel)
	defer logger.Sync()

	zap.L().Info("schwarzesbrett worker starting...",
		zap.String("serviceName", appConfig.ServiceName),
		zap.String("expirySchedule", appConfig.ExpirySchedule),
	)

	if err := checkConfig(appConfig); err != nil {
		zap.L().Fatal("Invalid worker config", zap.Error(err))
	}

	deps, err := container.New(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	bindings := make([]rabbitmq.Binding, 0)
	for exchange, keys := range consumers.Bindings() {
		bindings = append(bindings, rabbitmq.Binding{Exchange: exchange, RoutingKeys: keys})
	}

	consumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
		QueueName:     appConfig.ServiceName + ".cache.invalidation.v1",
		ServiceName:   appConfig.ServiceName + "-worker",
		Bindings:      bindings,
		PrefetchCount: 20,
	})
	if err != nil {
		zap.L().Fatal("Failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	cacheHandler := consumers.NewCacheEventHandler(deps.AdCache, deps.Categories, deps.Settings)
	expiry := jobs.NewExpiryJob(appConfig.ExpirySchedule, deps.Repository, deps.Publisher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, cacheHandler.HandleEvent)
	})

	g.Go(func() error {
		if err := expiry.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		expiry.Stop()
		return nil
	})

	g.Go(func() error {
		monitorPool(ctx, deps.Repository)
		return nil
	})

	zap.L().Info("Worker started, waiting for events...")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		zap.L().Error("Worker stopped with error", zap.Error(err))
		return
	}

	zap.L().Info("Worker stopped gracefully")
}

// checkConfig requires the broker the worker consumes from and the shared
// Redis its cache invalidations must reach. In-process caches here would be
// invisible to the api.
func checkConfig(cfg *config.AppConfig) error {
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for the worker")
	}
	if !cfg.RedisEnabled() {
		return errors.New("REDIS_HOST is required for the worker")
	}
	return nil
}

func monitorPool(ctx context.Context, repository *postgres.PgRepository) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := repository.GetPoolStats()
			zap.L().Info("Connection pool stats",
				zap.Int("max_open", stats["max_open_connections"].(int)),
				zap.Int("open", stats["open_connections"].(int)),
				zap.Int("in_use", stats["in_use"].(int)),
				zap.Int("idle", stats["idle"].(int)),
				zap.Int64("wait_count", stats["wait_count"].(int64)),
				zap.Int64("wait_duration_ms", stats["wait_duration_ms"].(int64)),
			)
		}
	}
}
