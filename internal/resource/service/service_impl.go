package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/smallbiznis/billingconsole/internal/clock"
	"github.com/smallbiznis/billingconsole/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("resource.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

// Load returns the resource for the exact locale, falling back to its base
// language ("en-US" -> "en").
func (s *Service) Load(ctx context.Context, locale, name string) (domain.PlanResource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.PlanResource{}, domain.ErrInvalidName
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return domain.PlanResource{}, domain.ErrInvalidLocale
	}

	for _, candidate := range localeChain(locale) {
		res, err := s.repo.Find(ctx, name, candidate)
		if err != nil {
			return domain.PlanResource{}, err
		}
		if res != nil {
			if candidate != locale {
				s.log.Debug("served base language resource",
					zap.String("name", name),
					zap.String("requested", locale),
					zap.String("served", candidate),
				)
			}
			return *res, nil
		}
	}
	return domain.PlanResource{}, domain.ErrNotFound
}

// Publish stores a new version of a resource. Cached copies expire on their own.
func (s *Service) Publish(ctx context.Context, resource domain.PlanResource) (domain.PlanResource, error) {
	resource.Name = strings.TrimSpace(resource.Name)
	resource.Locale = strings.TrimSpace(resource.Locale)
	if resource.Name == "" {
		return domain.PlanResource{}, domain.ErrInvalidName
	}
	if resource.Locale == "" {
		return domain.PlanResource{}, domain.ErrInvalidLocale
	}
	if len(resource.Payload) == 0 || !json.Valid(resource.Payload) {
		return domain.PlanResource{}, domain.ErrInvalidBody
	}

	existing, err := s.repo.Find(ctx, resource.Name, resource.Locale)
	if err != nil {
		return domain.PlanResource{}, err
	}
	resource.Version = 1
	if existing != nil {
		resource.Version = existing.Version + 1
	}
	resource.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, &resource); err != nil {
		return domain.PlanResource{}, err
	}
	return resource, nil
}

func localeChain(locale string) []string {
	chain := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok && base != "" {
		chain = append(chain, base)
	}
	return chain
}
