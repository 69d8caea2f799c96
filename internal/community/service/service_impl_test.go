package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/billingconsole/internal/community/domain"
	"github.com/smallbiznis/billingconsole/internal/community/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Community{}, &domain.Member{}))

	svc := New(Params{DB: db, Log: zaptest.NewLogger(t), Repo: repository.Provide()})
	return svc, db
}

func seedCommunity(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&domain.Community{ID: "c-1", Name: "Alpha", CreatedAt: now}).Error)
	members := []domain.Member{
		{ID: 1, CommunityID: "c-1", UserID: "u-1", Role: domain.RoleOwner, Active: true, CreatedAt: now},
		{ID: 2, CommunityID: "c-1", UserID: "u-2", Role: domain.RoleMember, Active: true, CreatedAt: now.Add(time.Second)},
		{ID: 3, CommunityID: "c-1", UserID: "u-3", Role: domain.RoleMember, Active: true, CreatedAt: now.Add(2 * time.Second)},
		{ID: 4, CommunityID: "c-2", UserID: "u-4", Role: domain.RoleOwner, Active: true, CreatedAt: now},
	}
	require.NoError(t, db.Create(&members).Error)
	require.NoError(t, db.Model(&domain.Member{}).Where("id = ?", 3).Update("active", false).Error)
}

func TestGetAppUserUsageCountsActiveMembers(t *testing.T) {
	svc, db := setupService(t)
	seedCommunity(t, db)

	count, err := svc.GetAppUserUsage(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = svc.GetAppUserUsage(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.GetAppUserUsage(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestGetCommunity(t *testing.T) {
	svc, db := setupService(t)
	seedCommunity(t, db)

	got, err := svc.Get(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMembersOrdersByJoinTime(t *testing.T) {
	svc, db := setupService(t)
	seedCommunity(t, db)

	members, err := svc.ListMembers(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "u-1", members[0].UserID)
	assert.Equal(t, domain.RoleOwner, members[0].Role)
	assert.False(t, members[2].Active)
}
