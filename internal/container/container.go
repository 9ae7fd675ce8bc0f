// Package container builds the shared components of the api, grpc and worker
// processes from the application config.
package container

import (
	"context"
	"time"

	"schwarzesbrett/app"
	"schwarzesbrett/app/category"
	"schwarzesbrett/domain"
	"schwarzesbrett/infra/postgres"
	"schwarzesbrett/infra/rabbitmq"
	"schwarzesbrett/pkg/aws"
	"schwarzesbrett/pkg/cache"
	"schwarzesbrett/pkg/categorytree"
	"schwarzesbrett/pkg/config"
	"schwarzesbrett/pkg/events"
	"schwarzesbrett/pkg/viewstate"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Container struct {
	Config     *config.AppConfig
	Repository *postgres.PgRepository
	Publisher  events.Publisher

	AdCache    cache.Cache[domain.Ad]
	Categories *category.CachedRepository
	Settings   *app.SiteSettings
	ViewState  *viewstate.Store

	redis     *redis.Client
	publisher *rabbitmq.Publisher
}

// New connects to Postgres, and to Redis and RabbitMQ when configured. Without
// Redis the caches live in process memory; without RabbitMQ no events are sent.
func New(cfg *config.AppConfig) (*Container, error) {
	c := &Container{
		Config:     cfg,
		Repository: postgres.NewPgRepository(cfg.PostgresDSN()),
	}

	if cfg.RedisEnabled() {
		client, err := cache.Connect(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.redis = client
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.ServiceName)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.publisher = publisher
		c.Publisher = publisher
	} else {
		zap.L().Warn("RABBITMQ_URL not set, domain events are disabled")
	}

	c.AdCache = newCache[domain.Ad](c.redis, "ad:", cfg.CacheTTL)
	c.Categories = category.NewCachedRepository(c.Repository,
		newCache[[]domain.Category](c.redis, "category:level:", cfg.CacheTTL))
	c.Settings = app.NewSiteSettings(c.Repository,
		newCache[string](c.redis, "setting:", cfg.CacheTTL), cfg.ItemsPerPage)
	c.ViewState = viewstate.NewStore(
		newCache[viewstate.Listing](c.redis, "view:listing:", cfg.ViewStateTTL),
		newCache[categorytree.Snapshot](c.redis, "view:tree:", cfg.ViewStateTTL),
	)

	return c, nil
}

func newCache[V any](client *redis.Client, prefix string, ttl time.Duration) cache.Cache[V] {
	if client == nil {
		return cache.NewMemory[V](ttl)
	}
	return cache.NewRedis[V](client, prefix, ttl)
}

// Images opens the S3 bucket holding ad images.
func (c *Container) Images() *aws.S3 {
	return aws.NewS3Bucket(c.Config)
}

// Healthy reports whether the database answers and, when configured, the
// broker connection is open.
func (c *Container) Healthy(ctx context.Context) bool {
	if err := c.Repository.Ping(ctx); err != nil {
		return false
	}
	if c.publisher != nil && !c.publisher.IsHealthy() {
		return false
	}
	return true
}

func (c *Container) Close() {
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			zap.L().Error("Failed to close publisher", zap.Error(err))
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			zap.L().Error("Failed to close redis", zap.Error(err))
		}
	}
	if err := c.Repository.Close(); err != nil {
		zap.L().Error("Failed to close database", zap.Error(err))
	}
}
