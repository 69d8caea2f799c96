package resource

import (
	"github.com/smallbiznis/billingconsole/internal/resource/domain"
	"github.com/smallbiznis/billingconsole/internal/resource/repository"
	"github.com/smallbiznis/billingconsole/internal/resource/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resource.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.Loader { return svc }),
)
