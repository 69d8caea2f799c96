package repository

import (
	"context"

	"github.com/smallbiznis/billingconsole/internal/community/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Community, error) {
	var community domain.Community
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, created_at FROM communities WHERE id = ? LIMIT 1`,
		id,
	).Scan(&community).Error
	if err != nil {
		return nil, err
	}
	if community.ID == "" {
		return nil, nil
	}
	return &community, nil
}

func (r *repo) CountActiveMembers(ctx context.Context, db *gorm.DB, communityID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM community_members WHERE community_id = ? AND active = ?`,
		communityID,
		true,
	).Scan(&count).Error
	return count, err
}

func (r *repo) ListMembers(ctx context.Context, db *gorm.DB, communityID string) ([]domain.Member, error) {
	var members []domain.Member
	err := db.WithContext(ctx).Raw(
		`SELECT id, community_id, user_id, role, active, created_at
		 FROM community_members
		 WHERE community_id = ?
		 ORDER BY created_at ASC, id ASC`,
		communityID,
	).Scan(&members).Error
	return members, err
}
