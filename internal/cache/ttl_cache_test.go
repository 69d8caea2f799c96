package cache

import (
	"testing"
	"time"

	"github.com/smallbiznis/billingconsole/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiresLazily(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](clk)

	c.Set("a", 1, time.Minute)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	clk.Advance(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheIgnoresNonPositiveTTL(t *testing.T) {
	c := NewTTLCache[string, int](nil)
	c.Set("a", 1, 0)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestKeyNormalizesParts(t *testing.T) {
	assert.Equal(t, "resource|en-us", Key(" Resource ", "", "en-US"))
	assert.Equal(t, "", Key(" ", ""))
}
