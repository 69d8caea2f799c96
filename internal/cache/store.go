package cache

import (
	"context"
	"time"

	"github.com/smallbiznis/billingconsole/internal/clock"
)

// Entry is a cached value with its freshness deadline. Stores may keep an
// entry past FreshUntil so callers can choose to serve it stale.
type Entry struct {
	Value      []byte    `json:"value"`
	StoredAt   time.Time `json:"stored_at"`
	FreshUntil time.Time `json:"fresh_until"`
}

func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.FreshUntil)
}

// Store persists entries per bucket.
type Store interface {
	Get(ctx context.Context, bucket, key string) (Entry, bool, error)
	Set(ctx context.Context, bucket, key string, entry Entry, retain time.Duration) error
	Delete(ctx context.Context, bucket, key string) error
	Now() time.Time
}

type memoryStore struct {
	clock   clock.Clock
	entries Cache[string, Entry]
}

func NewMemoryStore(clk clock.Clock) Store {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &memoryStore{clock: clk, entries: NewTTLCache[string, Entry](clk)}
}

func (s *memoryStore) Get(_ context.Context, bucket, key string) (Entry, bool, error) {
	entry, ok := s.entries.Get(storeKey(bucket, key))
	return entry, ok, nil
}

func (s *memoryStore) Set(_ context.Context, bucket, key string, entry Entry, retain time.Duration) error {
	s.entries.Set(storeKey(bucket, key), entry, retain)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, bucket, key string) error {
	s.entries.Delete(storeKey(bucket, key))
	return nil
}

func (s *memoryStore) Now() time.Time {
	return s.clock.Now()
}

func storeKey(bucket, key string) string {
	return bucket + ":" + key
}
