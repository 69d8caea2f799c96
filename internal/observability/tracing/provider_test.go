package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestSafeAttributesDropsPaymentKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/screens/:id"),
		attribute.String("card.token", "tok_123"),
		attribute.String("customer.email", "a@b.c"),
	)
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorRedactsTokens(t *testing.T) {
	err := SafeError(errors.New("no such token: tok_123"))
	assert.NotContains(t, err.Error(), "tok_123")
	assert.Nil(t, SafeError(nil))

	plain := errors.New("timeout")
	assert.Equal(t, plain, SafeError(plain))
}

func TestDisabledProviderDoesNotSample(t *testing.T) {
	provider, err := NewProvider(nil, Config{ServiceName: "billingconsole"}, zap.NewNop())
	require.NoError(t, err)
	_, span := provider.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()
}

func TestGinMiddlewareNamesSpanByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/screens/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/screens/42", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET /api/screens/:id", spans[0].Name())
}
