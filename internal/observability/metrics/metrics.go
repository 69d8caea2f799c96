package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
}

// Metrics exposes billing console instruments.
type Metrics struct {
	submissions   metric.Int64Counter
	transitions   metric.Int64Counter
	invoicePages  metric.Int64Counter
	cacheLookups  metric.Int64Counter
	backendCalls  metric.Int64Counter
	activeScreens metric.Int64UpDownCounter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "billingconsole"
	}
	meter := provider.Meter(name)

	submissions, err := meter.Int64Counter("billingconsole_card_submissions_total")
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("billingconsole_workflow_transitions_total")
	if err != nil {
		return nil, err
	}
	invoicePages, err := meter.Int64Counter("billingconsole_invoice_pages_total")
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("billingconsole_cache_lookups_total")
	if err != nil {
		return nil, err
	}
	backendCalls, err := meter.Int64Counter("billingconsole_backend_calls_total")
	if err != nil {
		return nil, err
	}
	activeScreens, err := meter.Int64UpDownCounter("billingconsole_active_screens")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		submissions:   submissions,
		transitions:   transitions,
		invoicePages:  invoicePages,
		cacheLookups:  cacheLookups,
		backendCalls:  backendCalls,
		activeScreens: activeScreens,
	}, nil
}

// RecordSubmission counts a finished card submission by outcome.
func (m *Metrics) RecordSubmission(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.submissions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTransition counts entries into a workflow state.
func (m *Metrics) RecordTransition(ctx context.Context, state string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("state", strings.TrimSpace(state)))
	m.transitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordInvoicePage(ctx context.Context, direction string, appended int) {
	if m == nil {
		return
	}
	result := "empty"
	if appended > 0 {
		result = "appended"
	}
	attrs := FilterAttributes(
		attribute.String("direction", strings.TrimSpace(direction)),
		attribute.String("result", result),
	)
	m.invoicePages.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheLookup counts read-through cache lookups; result is hit, miss or stale.
func (m *Metrics) RecordCacheLookup(ctx context.Context, bucket, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("bucket", strings.TrimSpace(bucket)),
		attribute.String("result", strings.TrimSpace(result)),
	)
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordBackendCall(ctx context.Context, provider, operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	attrs := FilterAttributes(
		attribute.String("provider", strings.TrimSpace(provider)),
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("result", result),
	)
	m.backendCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) ScreenOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeScreens.Add(ctx, 1)
}

func (m *Metrics) ScreenClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeScreens.Add(ctx, -1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome":   {},
	"state":     {},
	"direction": {},
	"result":    {},
	"bucket":    {},
	"provider":  {},
	"operation": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
