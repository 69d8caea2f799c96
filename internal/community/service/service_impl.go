package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/billingconsole/internal/community/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("community.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id string) (domain.Community, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Community{}, domain.ErrInvalidID
	}

	community, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Community{}, err
	}
	if community == nil {
		return domain.Community{}, domain.ErrNotFound
	}
	return *community, nil
}

// GetAppUserUsage counts active members. Unknown communities report zero.
func (s *Service) GetAppUserUsage(ctx context.Context, communityID string) (int64, error) {
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return 0, domain.ErrInvalidID
	}

	count, err := s.repo.CountActiveMembers(ctx, s.db, communityID)
	if err != nil {
		s.log.Warn("count active members failed", zap.String("community_id", communityID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *Service) ListMembers(ctx context.Context, communityID string) ([]domain.Member, error) {
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListMembers(ctx, s.db, communityID)
}
