package migration

import (
	"context"
	_ "embed"
	"errors"

	"github.com/smallbiznis/billingconsole/internal/config"
	resourcedomain "github.com/smallbiznis/billingconsole/internal/resource/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

//go:embed default_plans.json
var defaultPlans []byte

// SeedPlans publishes the bundled plan resource when none exists yet.
func SeedPlans(ctx context.Context, resources resourcedomain.Service, plans config.PlanResourceConfig, log *zap.Logger) error {
	_, err := resources.Load(ctx, plans.Locale, plans.Name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, resourcedomain.ErrNotFound) {
		return err
	}

	seeded, err := resources.Publish(ctx, resourcedomain.PlanResource{
		Name:    plans.Name,
		Locale:  plans.Locale,
		Payload: datatypes.JSON(defaultPlans),
	})
	if err != nil {
		return err
	}
	log.Info("seeded plan resource",
		zap.String("name", seeded.Name),
		zap.String("locale", seeded.Locale),
		zap.Int64("version", seeded.Version),
	)
	return nil
}
