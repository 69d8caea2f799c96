package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StalePolicy decides what happens when a refresh fails and an expired entry exists.
type StalePolicy int

const (
	// StalePolicyNone never serves an expired entry.
	StalePolicyNone StalePolicy = iota
	// StalePolicyServeStale returns the expired entry when the producer fails.
	StalePolicyServeStale
)

const staleRetention = 24 * time.Hour

const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupStale = "stale"
	lookupError = "error"
)

// LookupRecorder is implemented by stores that report lookup outcomes.
type LookupRecorder interface {
	RecordLookup(ctx context.Context, bucket, result string)
}

var flights singleflight.Group

// LoadCached returns the fresh cached value for key or runs producer and
// caches its result for ttl. Concurrent misses for the same key share one
// producer call; a caller whose ctx ends stops waiting without cancelling the
// call for the others. Store failures degrade to calling producer directly.
func LoadCached[T any](
	ctx context.Context,
	store Store,
	key string,
	producer func(context.Context) (T, error),
	bucket string,
	ttl time.Duration,
	policy StalePolicy,
) (T, error) {
	var zero T
	log := zap.L().Named("cache")

	entry, found, err := store.Get(ctx, bucket, key)
	if err != nil {
		log.Warn("cache read failed", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		found = false
	}
	if found && entry.Fresh(store.Now()) {
		var value T
		if err := json.Unmarshal(entry.Value, &value); err == nil {
			record(ctx, store, bucket, lookupHit)
			return value, nil
		}
		log.Warn("discarding undecodable cache entry", zap.String("bucket", bucket), zap.String("key", key))
		found = false
	}

	// The shared call must outlive any single caller, so it drops cancellation
	// and each caller waits on its own ctx instead.
	flightCtx := context.WithoutCancel(ctx)
	flight := flights.DoChan(bucket+":"+key, func() (any, error) {
		value, err := producer(flightCtx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode cache value: %w", err)
		}
		now := store.Now()
		retain := ttl
		if policy == StalePolicyServeStale {
			retain += staleRetention
		}
		if err := store.Set(flightCtx, bucket, key, Entry{Value: encoded, StoredAt: now, FreshUntil: now.Add(ttl)}, retain); err != nil {
			log.Warn("cache write failed", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		}
		return value, nil
	})

	var result any
	select {
	case <-ctx.Done():
		record(ctx, store, bucket, lookupError)
		return zero, ctx.Err()
	case res := <-flight:
		result, err = res.Val, res.Err
	}
	if err != nil {
		if found && policy == StalePolicyServeStale {
			var value T
			if decodeErr := json.Unmarshal(entry.Value, &value); decodeErr == nil {
				record(ctx, store, bucket, lookupStale)
				return value, nil
			}
		}
		record(ctx, store, bucket, lookupError)
		return zero, err
	}

	record(ctx, store, bucket, lookupMiss)
	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected value type %T", result)
	}
	return value, nil
}

func record(ctx context.Context, store Store, bucket, result string) {
	if recorder, ok := store.(LookupRecorder); ok {
		recorder.RecordLookup(ctx, bucket, result)
	}
}
