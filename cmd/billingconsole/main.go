package main

import (
	"github.com/smallbiznis/billingconsole/internal/authorization"
	"github.com/smallbiznis/billingconsole/internal/billing"
	"github.com/smallbiznis/billingconsole/internal/broadcast"
	"github.com/smallbiznis/billingconsole/internal/cache"
	"github.com/smallbiznis/billingconsole/internal/clock"
	"github.com/smallbiznis/billingconsole/internal/community"
	"github.com/smallbiznis/billingconsole/internal/config"
	"github.com/smallbiznis/billingconsole/internal/migration"
	"github.com/smallbiznis/billingconsole/internal/observability"
	"github.com/smallbiznis/billingconsole/internal/payment"
	"github.com/smallbiznis/billingconsole/internal/ratelimit"
	"github.com/smallbiznis/billingconsole/internal/resource"
	"github.com/smallbiznis/billingconsole/internal/server"
	"github.com/smallbiznis/billingconsole/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		cache.Module,
		broadcast.Module,
		ratelimit.Module,

		// Functional Domains
		community.Module,
		resource.Module,
		payment.Module,
		authorization.Module,
		migration.Module,
		billing.Module,

		server.Module,
	)
	app.Run()
}
