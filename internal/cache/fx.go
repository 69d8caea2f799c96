package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billingconsole/internal/clock"
	"github.com/smallbiznis/billingconsole/internal/config"
	"github.com/smallbiznis/billingconsole/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

// NewStore builds the configured store and wraps it with lookup metrics.
func NewStore(p Params) (Store, error) {
	log := p.Log.Named("cache.store")

	var store Store
	switch p.Cfg.Cache.Driver {
	case config.CacheDriverRedis:
		if p.Cfg.Cache.RedisAddr == "" {
			return nil, errors.New("cache: CACHE_REDIS_ADDR is required for the redis driver")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     p.Cfg.Cache.RedisAddr,
			Password: p.Cfg.Cache.RedisPassword,
			DB:       p.Cfg.Cache.RedisDB,
		})
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				return client.Ping(pingCtx).Err()
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		store = NewRedisStore(client, p.Clock)
	default:
		store = NewMemoryStore(p.Clock)
	}

	log.Info("cache store ready", zap.String("driver", p.Cfg.Cache.Driver))
	return WithMetrics(store, p.Metrics), nil
}

type instrumentedStore struct {
	Store
	metrics *metrics.Metrics
}

// WithMetrics reports LoadCached outcomes through m. A nil m returns store unchanged.
func WithMetrics(store Store, m *metrics.Metrics) Store {
	if m == nil {
		return store
	}
	return &instrumentedStore{Store: store, metrics: m}
}

func (s *instrumentedStore) RecordLookup(ctx context.Context, bucket, result string) {
	s.metrics.RecordCacheLookup(ctx, bucket, result)
}
