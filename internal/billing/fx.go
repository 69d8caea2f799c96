package billing

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/smallbiznis/billingconsole/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(RegisterSnowflake),
	fx.Provide(service.NewManager),
	fx.Provide(func(m *service.Manager) domain.Manager { return m }),
	fx.Invoke(func(lc fx.Lifecycle, m *service.Manager) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				m.Shutdown()
				return nil
			},
		})
	}),
)

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
