package stripe

import (
	"net/http"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ClientConfig points the SDK at Stripe or at a compatible test server.
type ClientConfig struct {
	SecretKey string
	APIURL    string
	Timeout   time.Duration
}

func NewClient(cfg ClientConfig) *client.API {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	backendCfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxNetworkRetries: stripe.Int64(1),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if url := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"); url != "" {
		backendCfg.URL = stripe.String(url)
		backendCfg.MaxNetworkRetries = stripe.Int64(0)
		backendCfg.LeveledLogger = &stripe.LeveledLogger{Level: stripe.LevelNull}
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	return client.New(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
}
