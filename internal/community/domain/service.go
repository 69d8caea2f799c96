package domain

import (
	"context"
	"errors"
)

// Directory answers usage questions about a community.
type Directory interface {
	GetAppUserUsage(ctx context.Context, communityID string) (int64, error)
}

type Service interface {
	Directory
	Get(ctx context.Context, id string) (Community, error)
	ListMembers(ctx context.Context, communityID string) ([]Member, error)
}

var (
	ErrInvalidID = errors.New("invalid_community_id")
	ErrNotFound  = errors.New("community_not_found")
)
