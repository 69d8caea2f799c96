package domain

import "context"

type Repository interface {
	Find(ctx context.Context, name, locale string) (*PlanResource, error)
	Save(ctx context.Context, resource *PlanResource) error
}
