package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billingconsole/internal/clock"
)

const redisKeyPrefix = "billingconsole:cache:"

type redisStore struct {
	client redis.UniversalClient
	clock  clock.Clock
}

// NewRedisStore keeps entries as snappy-compressed JSON under
// "billingconsole:cache:<bucket>:<key>".
func NewRedisStore(client redis.UniversalClient, clk clock.Clock) Store {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &redisStore{client: client, clock: clk}
}

func (s *redisStore) Get(ctx context.Context, bucket, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+storeKey(bucket, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(decoded, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, true, nil
}

func (s *redisStore) Set(ctx context.Context, bucket, key string, entry Entry, retain time.Duration) error {
	if retain <= 0 {
		return nil
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+storeKey(bucket, key), snappy.Encode(nil, encoded), retain).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, bucket, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+storeKey(bucket, key)).Err()
}

func (s *redisStore) Now() time.Time {
	return s.clock.Now()
}
