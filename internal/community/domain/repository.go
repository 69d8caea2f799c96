package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Community, error)
	CountActiveMembers(ctx context.Context, db *gorm.DB, communityID string) (int64, error)
	ListMembers(ctx context.Context, db *gorm.DB, communityID string) ([]Member, error)
}
