package service

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/billingconsole/internal/config"
	"github.com/smallbiznis/billingconsole/internal/payment/adapters"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingBackend struct {
	calls   []string
	failOn  string
	invoice []paymentdomain.Invoice
}

func (b *recordingBackend) hit(op string) error {
	b.calls = append(b.calls, op)
	if op == b.failOn {
		return errors.New("boom")
	}
	return nil
}

func (b *recordingBackend) LoadCustomer(_ context.Context, id string) (*paymentdomain.Customer, error) {
	if err := b.hit("load_customer"); err != nil {
		return nil, err
	}
	return &paymentdomain.Customer{ID: "cus_" + id}, nil
}

func (b *recordingBackend) LoadBillingInfo(context.Context, string) (paymentdomain.SourceList, error) {
	return paymentdomain.SourceList{}, b.hit("load_billing_info")
}

func (b *recordingBackend) UpdateBillingMethod(context.Context, string, paymentdomain.Source) (string, error) {
	return "declined", b.hit("update_billing_method")
}

func (b *recordingBackend) ListInvoices(context.Context, string, string) ([]paymentdomain.Invoice, error) {
	return b.invoice, b.hit("list_invoices")
}

type factory struct{ backend paymentdomain.Backend }

func (f factory) Provider() string { return "remote" }

func (f factory) NewBackend() (paymentdomain.Backend, error) { return f.backend, nil }

func TestNewServiceSelectsConfiguredBackend(t *testing.T) {
	backend := &recordingBackend{invoice: []paymentdomain.Invoice{{ID: "in_1"}}}
	cfg := config.Config{Payment: config.PaymentConfig{Backend: "remote"}}

	svc, err := NewService(Params{Cfg: cfg, Log: zaptest.NewLogger(t), Registry: adapters.NewRegistry(factory{backend: backend})})
	require.NoError(t, err)

	customer, err := svc.LoadCustomer(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "cus_c-1", customer.ID)

	invoices, err := svc.ListInvoices(context.Background(), "c-1", "")
	require.NoError(t, err)
	assert.Len(t, invoices, 1)

	result, err := svc.UpdateBillingMethod(context.Background(), "c-1", paymentdomain.Source{ID: "src_1"})
	require.NoError(t, err)
	assert.Equal(t, "declined", result)

	assert.Equal(t, []string{"load_customer", "list_invoices", "update_billing_method"}, backend.calls)
}

func TestNewServiceUnknownBackend(t *testing.T) {
	cfg := config.Config{Payment: config.PaymentConfig{Backend: "stripe"}}
	_, err := NewService(Params{Cfg: cfg, Log: zaptest.NewLogger(t), Registry: adapters.NewRegistry()})
	assert.ErrorIs(t, err, paymentdomain.ErrProviderNotFound)
}

func TestServicePropagatesErrors(t *testing.T) {
	backend := &recordingBackend{failOn: "load_billing_info"}
	svc := Wrap("remote", backend, zaptest.NewLogger(t), nil)

	_, err := svc.LoadBillingInfo(context.Background(), "c-1")
	assert.EqualError(t, err, "boom")
}
