package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const ProviderName = "remote"

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Factory struct {
	cfg Config
	log *zap.Logger
}

func NewFactory(cfg Config, log *zap.Logger) *Factory {
	return &Factory{cfg: cfg, log: log}
}

func (f *Factory) Provider() string {
	return ProviderName
}

func (f *Factory) NewBackend() (paymentdomain.Backend, error) {
	return NewBackend(f.cfg, f.log)
}

// Backend talks to the application backend's payments API.
type Backend struct {
	baseURL *url.URL
	token   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	log     *zap.Logger
}

func NewBackend(cfg Config, log *zap.Logger) (*Backend, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	b := &Backend{
		baseURL: base,
		token:   strings.TrimSpace(cfg.Token),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log.Named("payment.remote"),
	}
	b.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "payment.remote",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return b, nil
}

type customerPayload struct {
	Customer *paymentdomain.Customer `json:"customer"`
}

type updatePayload struct {
	Source paymentdomain.Source `json:"source"`
}

type updateResult struct {
	Result string `json:"result"`
}

type invoicesPayload struct {
	Data []paymentdomain.Invoice `json:"data"`
}

func (b *Backend) LoadCustomer(ctx context.Context, communityID string) (*paymentdomain.Customer, error) {
	var out customerPayload
	status, err := b.do(ctx, http.MethodGet, communityID, "", "", nil, &out)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if out.Customer == nil || out.Customer.ID == "" {
		return nil, nil
	}
	out.Customer.CommunityID = communityID
	return out.Customer, nil
}

func (b *Backend) LoadBillingInfo(ctx context.Context, communityID string) (paymentdomain.SourceList, error) {
	var out paymentdomain.SourceList
	status, err := b.do(ctx, http.MethodGet, communityID, "/sources", "", nil, &out)
	if status == http.StatusNotFound {
		return paymentdomain.SourceList{}, paymentdomain.ErrCustomerNotFound
	}
	if err != nil {
		return paymentdomain.SourceList{}, err
	}
	if out.Data == nil {
		out.Data = []paymentdomain.Source{}
	}
	return out, nil
}

func (b *Backend) UpdateBillingMethod(ctx context.Context, communityID string, source paymentdomain.Source) (string, error) {
	if strings.TrimSpace(source.ID) == "" {
		return "", paymentdomain.ErrInvalidSource
	}
	var out updateResult
	status, err := b.do(ctx, http.MethodPut, communityID, "/source", "", updatePayload{Source: source}, &out)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrBackendRejected) {
			return fmt.Sprintf("http_%d", status), nil
		}
		return "", err
	}
	return out.Result, nil
}

func (b *Backend) ListInvoices(ctx context.Context, communityID string, query string) ([]paymentdomain.Invoice, error) {
	var out invoicesPayload
	status, err := b.do(ctx, http.MethodGet, communityID, "/invoices", query, nil, &out)
	if status == http.StatusNotFound {
		return nil, paymentdomain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []paymentdomain.Invoice{}
	}
	return out.Data, nil
}

// do performs one call through the breaker. 4xx answers are returned as
// ErrBackendRejected and do not count as breaker failures.
func (b *Backend) do(ctx context.Context, method, communityID, suffix, query string, body any, out any) (int, error) {
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return 0, paymentdomain.ErrInvalidCommunity
	}

	endpoint := b.baseURL.JoinPath("api", "payments", "customers", communityID)
	if suffix != "" {
		endpoint = endpoint.JoinPath(suffix)
	}
	if query = strings.TrimPrefix(strings.TrimSpace(query), "?"); query != "" {
		endpoint.RawQuery = query
	}

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		payload = encoded
	}

	resp, err := b.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if b.token != "" {
			req.Header.Set("Authorization", "Bearer "+b.token)
		}
		resp, err := b.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			_ = drain(resp)
			return nil, fmt.Errorf("payments api %s %s: status %d", method, endpoint.Path, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("%w: %v", paymentdomain.ErrBackendOpen, err)
		}
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_ = drain(resp)
		return resp.StatusCode, fmt.Errorf("%w: status %d", paymentdomain.ErrBackendRejected, resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode payments response: %w", err)
	}
	return resp.StatusCode, nil
}

func drain(resp *http.Response) error {
	_, err := io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return err
}

var _ paymentdomain.Backend = (*Backend)(nil)
