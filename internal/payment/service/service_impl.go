package service

import (
	"context"
	"time"

	"github.com/smallbiznis/billingconsole/internal/config"
	obsmetrics "github.com/smallbiznis/billingconsole/internal/observability/metrics"
	"github.com/smallbiznis/billingconsole/internal/payment/adapters"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Registry *adapters.Registry
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

// Service is the configured Backend wrapped with logging, tracing and call metrics.
type Service struct {
	provider string
	backend  paymentdomain.Backend
	log      *zap.Logger
	metrics  *obsmetrics.Metrics
	tracer   trace.Tracer
}

func NewService(p Params) (*Service, error) {
	backend, err := p.Registry.NewBackend(p.Cfg.Payment.Backend)
	if err != nil {
		return nil, err
	}
	return Wrap(p.Cfg.Payment.Backend, backend, p.Log, p.Metrics), nil
}

func Wrap(provider string, backend paymentdomain.Backend, log *zap.Logger, metrics *obsmetrics.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		provider: provider,
		backend:  backend,
		log:      log.Named("payment.service"),
		metrics:  metrics,
		tracer:   otel.Tracer("billingconsole/payment"),
	}
}

func (s *Service) LoadCustomer(ctx context.Context, communityID string) (*paymentdomain.Customer, error) {
	var customer *paymentdomain.Customer
	err := s.observe(ctx, "load_customer", communityID, func(ctx context.Context) error {
		var err error
		customer, err = s.backend.LoadCustomer(ctx, communityID)
		return err
	})
	return customer, err
}

func (s *Service) LoadBillingInfo(ctx context.Context, communityID string) (paymentdomain.SourceList, error) {
	var list paymentdomain.SourceList
	err := s.observe(ctx, "load_billing_info", communityID, func(ctx context.Context) error {
		var err error
		list, err = s.backend.LoadBillingInfo(ctx, communityID)
		return err
	})
	return list, err
}

func (s *Service) UpdateBillingMethod(ctx context.Context, communityID string, source paymentdomain.Source) (string, error) {
	var result string
	err := s.observe(ctx, "update_billing_method", communityID, func(ctx context.Context) error {
		var err error
		result, err = s.backend.UpdateBillingMethod(ctx, communityID, source)
		return err
	})
	if err == nil && result != paymentdomain.UpdateSucceeded {
		s.log.Info("backend declined billing method update",
			zap.String("community_id", communityID),
			zap.String("result", result),
		)
	}
	return result, err
}

func (s *Service) ListInvoices(ctx context.Context, communityID string, query string) ([]paymentdomain.Invoice, error) {
	var invoices []paymentdomain.Invoice
	err := s.observe(ctx, "list_invoices", communityID, func(ctx context.Context) error {
		var err error
		invoices, err = s.backend.ListInvoices(ctx, communityID, query)
		return err
	})
	return invoices, err
}

func (s *Service) observe(ctx context.Context, operation, communityID string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "payment."+operation, trace.WithAttributes(
		attribute.String("payment.provider", s.provider),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordBackendCall(ctx, s.provider, operation, err)
	if err != nil {
		span.SetStatus(codes.Error, operation+" failed")
		s.log.Warn("payment backend call failed",
			zap.String("operation", operation),
			zap.String("community_id", communityID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
	return err
}

var _ paymentdomain.Backend = (*Service)(nil)
