package domain

import (
	"context"
	"errors"
)

// Loader fetches a plan resource for a locale tag such as "en-US".
type Loader interface {
	Load(ctx context.Context, locale, name string) (PlanResource, error)
}

type Service interface {
	Loader
	Publish(ctx context.Context, resource PlanResource) (PlanResource, error)
}

var (
	ErrInvalidName   = errors.New("invalid_resource_name")
	ErrInvalidLocale = errors.New("invalid_locale")
	ErrInvalidBody   = errors.New("invalid_resource_payload")
	ErrNotFound      = errors.New("resource_not_found")
)
