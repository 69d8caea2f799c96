package repository

import (
	"context"

	"github.com/smallbiznis/billingconsole/internal/resource/domain"
	"github.com/smallbiznis/billingconsole/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[domain.PlanResource]
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{store: repository.ProvideStore[domain.PlanResource](db)}
}

func (r *repo) Find(ctx context.Context, name, locale string) (*domain.PlanResource, error) {
	return r.store.FindOne(ctx, &domain.PlanResource{Name: name, Locale: locale})
}

func (r *repo) Save(ctx context.Context, resource *domain.PlanResource) error {
	return r.store.Save(ctx, resource)
}
