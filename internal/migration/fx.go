package migration

import (
	"context"

	"github.com/smallbiznis/billingconsole/internal/config"
	resourcedomain "github.com/smallbiznis/billingconsole/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, resources resourcedomain.Service, log *zap.Logger) error {
		if err := Migrate(conn, cfg.DBType); err != nil {
			return err
		}
		return SeedPlans(context.Background(), resources, cfg.Plans, log.Named("migration"))
	}),
)
