package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/billingconsole/internal/clock"
	"github.com/smallbiznis/billingconsole/internal/resource/domain"
	"github.com/smallbiznis/billingconsole/internal/resource/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.PlanResource{}))

	clk := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(Params{Log: zaptest.NewLogger(t), Repo: repository.Provide(db), Clock: clk}), clk
}

func TestPublishBumpsVersion(t *testing.T) {
	svc, clk := setupService(t)
	ctx := context.Background()

	first, err := svc.Publish(ctx, domain.PlanResource{Name: "Restvo Plans", Locale: "en-US", Payload: datatypes.JSON(`{"plans":[]}`)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	clk.Advance(time.Hour)
	second, err := svc.Publish(ctx, domain.PlanResource{Name: "Restvo Plans", Locale: "en-US", Payload: datatypes.JSON(`{"plans":[{"id":"pro"}]}`)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, clk.Now(), second.UpdatedAt)

	got, err := svc.Load(ctx, "en-US", "Restvo Plans")
	require.NoError(t, err)
	assert.JSONEq(t, `{"plans":[{"id":"pro"}]}`, string(got.Payload))
	assert.True(t, clk.Now().Equal(got.UpdatedAt), "stored updated_at %s", got.UpdatedAt)
}

func TestPublishRejectsInvalidPayload(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Publish(context.Background(), domain.PlanResource{Name: "Restvo Plans", Locale: "en", Payload: datatypes.JSON(`{`)})
	assert.ErrorIs(t, err, domain.ErrInvalidBody)
}

func TestLoadFallsBackToBaseLanguage(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	_, err := svc.Publish(ctx, domain.PlanResource{Name: "Restvo Plans", Locale: "en", Payload: datatypes.JSON(`{"plans":[]}`)})
	require.NoError(t, err)

	got, err := svc.Load(ctx, "en-GB", "Restvo Plans")
	require.NoError(t, err)
	assert.Equal(t, "en", got.Locale)

	_, err = svc.Load(ctx, "fr-FR", "Restvo Plans")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Load(ctx, "", "Restvo Plans")
	assert.ErrorIs(t, err, domain.ErrInvalidLocale)
}
