package community

import (
	"github.com/smallbiznis/billingconsole/internal/community/domain"
	"github.com/smallbiznis/billingconsole/internal/community/repository"
	"github.com/smallbiznis/billingconsole/internal/community/service"
	"go.uber.org/fx"
)

var Module = fx.Module("community.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.Directory { return svc }),
)
