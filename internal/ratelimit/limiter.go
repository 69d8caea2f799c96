package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billingconsole/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keySubmitCommunity = "billingconsole:submit:community:%s"

// SubmitLimiter throttles card submissions per community. A nil limiter allows everything.
type SubmitLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
}

func NewSubmitLimiter(p Params) (*SubmitLimiter, error) {
	limitCfg := p.Cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.SubmitRate <= 0 || limitCfg.SubmitBurst <= 0 {
		return nil, errors.New("submit rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: limitCfg.RedisPassword,
		DB:       limitCfg.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return New(client, limitCfg.SubmitRate, limitCfg.SubmitBurst, p.Log), nil
}

func New(client redis.UniversalClient, rate float64, burst int, log *zap.Logger) *SubmitLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmitLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
		log:    log.Named("ratelimit"),
	}
}

func (l *SubmitLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowSubmit fails open when redis is unreachable.
func (l *SubmitLimiter) AllowSubmit(ctx context.Context, communityID string) Result {
	if !l.Enabled() {
		return Result{Allowed: true}
	}
	key := fmt.Sprintf(keySubmitCommunity, strings.TrimSpace(communityID))
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("submit rate limit unavailable", zap.String("community_id", communityID), zap.Error(err))
		return Result{Allowed: true, Limit: l.burst}
	}
	return res
}
