package payment

import (
	"github.com/smallbiznis/billingconsole/internal/config"
	"github.com/smallbiznis/billingconsole/internal/payment/adapters"
	"github.com/smallbiznis/billingconsole/internal/payment/adapters/remote"
	"github.com/smallbiznis/billingconsole/internal/payment/adapters/stripe"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"github.com/smallbiznis/billingconsole/internal/payment/repository"
	paymentservice "github.com/smallbiznis/billingconsole/internal/payment/service"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config) *client.API {
		return stripe.NewClient(stripe.ClientConfig{
			SecretKey: cfg.Payment.StripeSecretKey,
			APIURL:    cfg.Payment.StripeAPIURL,
			Timeout:   cfg.Payment.RemoteTimeout,
		})
	}),
	fx.Provide(func(cfg config.Config, api *client.API, db *gorm.DB, repo paymentdomain.Repository, log *zap.Logger) *adapters.Registry {
		return adapters.NewRegistry(
			stripe.NewFactory(api, db, repo, log, cfg.Payment.InvoicePageLimit),
			remote.NewFactory(remote.Config{
				BaseURL: cfg.Payment.RemoteBaseURL,
				Token:   cfg.Payment.RemoteToken,
				Timeout: cfg.Payment.RemoteTimeout,
			}, log),
		)
	}),
	fx.Provide(paymentservice.NewService),
	fx.Provide(func(svc *paymentservice.Service) paymentdomain.Backend { return svc }),
	fx.Provide(func(api *client.API) paymentdomain.CardProvider { return stripe.NewCardProvider(api) }),
)
