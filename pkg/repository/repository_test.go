package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/billingconsole/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID     string `gorm:"primaryKey"`
	Group  string
	Active bool
}

func newStore(t *testing.T) Repository[widget] {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return ProvideStore[widget](conn)
}

func TestStoreFindOneReturnsNilWhenMissing(t *testing.T) {
	repo := newStore(t)
	got, err := repo.FindOne(context.Background(), &widget{ID: "missing"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreCountAppliesOptions(t *testing.T) {
	repo := newStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &widget{ID: "a", Group: "g", Active: true}))
	require.NoError(t, repo.Create(ctx, &widget{ID: "b", Group: "g", Active: false}))
	require.NoError(t, repo.Create(ctx, &widget{ID: "c", Group: "h", Active: true}))

	count, err := repo.Count(ctx, &widget{Group: "g"}, option.WithWhere("active = ?", true))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	rows, err := repo.Find(ctx, &widget{Group: "g"}, option.WithOrder("id desc"), option.WithLimit(1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ID)
}

func TestStoreSaveUpserts(t *testing.T) {
	repo := newStore(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &widget{ID: "a", Group: "g"}))
	require.NoError(t, repo.Save(ctx, &widget{ID: "a", Group: "h"}))

	got, err := repo.FindOne(ctx, &widget{ID: "a"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h", got.Group)
}
