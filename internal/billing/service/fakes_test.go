package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/billingconsole/internal/broadcast"
	"github.com/smallbiznis/billingconsole/internal/cache"
	"github.com/smallbiznis/billingconsole/internal/clock"
	"github.com/smallbiznis/billingconsole/internal/config"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	resourcedomain "github.com/smallbiznis/billingconsole/internal/resource/domain"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (l *fakeLoader) Load(_ context.Context, locale, name string) (resourcedomain.PlanResource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return resourcedomain.PlanResource{}, l.err
	}
	return resourcedomain.PlanResource{
		Name:    name,
		Locale:  locale,
		Version: 1,
		Payload: datatypes.JSON(`{"plans":["free","pro"]}`),
	}, nil
}

func (l *fakeLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type fakeBackend struct {
	mu sync.Mutex

	customer      *paymentdomain.Customer
	customerErr   error
	blockCustomer bool
	sources       paymentdomain.SourceList
	pages         [][]paymentdomain.Invoice
	updateAnswer  string
	updateErr     error

	customerCalls int
	billingCalls  int
	queries       []string
	updates       []paymentdomain.Source
}

func (b *fakeBackend) LoadCustomer(ctx context.Context, _ string) (*paymentdomain.Customer, error) {
	b.mu.Lock()
	b.customerCalls++
	block := b.blockCustomer
	customer, err := b.customer, b.customerErr
	b.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return customer, err
}

func (b *fakeBackend) LoadBillingInfo(context.Context, string) (paymentdomain.SourceList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.billingCalls++
	return b.sources, nil
}

func (b *fakeBackend) UpdateBillingMethod(_ context.Context, _ string, source paymentdomain.Source) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, source)
	return b.updateAnswer, b.updateErr
}

func (b *fakeBackend) ListInvoices(_ context.Context, _ string, query string) ([]paymentdomain.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, query)
	if len(b.pages) == 0 {
		return nil, nil
	}
	page := b.pages[0]
	b.pages = b.pages[1:]
	return page, nil
}

func (b *fakeBackend) counts() (customer, billing int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.customerCalls, b.billingCalls
}

func (b *fakeBackend) Queries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

type fakeDirectory struct{ users int64 }

func (d fakeDirectory) GetAppUserUsage(context.Context, string) (int64, error) {
	return d.users, nil
}

type fakeWidget struct {
	mu         sync.Mutex
	mounts     []string
	clears     int
	value      string
	failMounts int
}

var errMountFailed = errors.New("anchor not attached")

func (w *fakeWidget) Mount(anchor string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failMounts > 0 {
		w.failMounts--
		return errMountFailed
	}
	w.mounts = append(w.mounts, anchor)
	return nil
}

func (w *fakeWidget) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clears++
	w.value = ""
}

func (w *fakeWidget) Input(value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = value
}

func (w *fakeWidget) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func (w *fakeWidget) Anchor() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.mounts) == 0 {
		return ""
	}
	return w.mounts[len(w.mounts)-1]
}

type fakeProvider struct {
	mu sync.Mutex

	elementsErr error
	failMounts  int
	result      paymentdomain.SourceResult
	createErr   error
	panicOnCall bool

	elementsCalls int
	widgets       []*fakeWidget
	params        []paymentdomain.SourceParams
	styles        []paymentdomain.CardStyle
	locales       []string
}

type fakeElements struct{ p *fakeProvider }

func (e fakeElements) CreateCard(style paymentdomain.CardStyle) (paymentdomain.CardWidget, error) {
	e.p.mu.Lock()
	defer e.p.mu.Unlock()
	w := &fakeWidget{failMounts: e.p.failMounts}
	e.p.widgets = append(e.p.widgets, w)
	e.p.styles = append(e.p.styles, style)
	return w, nil
}

func (p *fakeProvider) Elements(_ context.Context, opts paymentdomain.ElementsOptions) (paymentdomain.ElementsContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elementsCalls++
	p.locales = append(p.locales, opts.Locale)
	if p.elementsErr != nil {
		return nil, p.elementsErr
	}
	return fakeElements{p: p}, nil
}

func (p *fakeProvider) CreateSource(_ context.Context, _ paymentdomain.CardWidget, params paymentdomain.SourceParams) (paymentdomain.SourceResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicOnCall {
		panic("provider exploded")
	}
	p.params = append(p.params, params)
	return p.result, p.createErr
}

func (p *fakeProvider) widget(t *testing.T) *fakeWidget {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.widgets) != 1 {
		t.Fatalf("expected exactly one widget, got %d", len(p.widgets))
	}
	return p.widgets[0]
}

type fixture struct {
	deps     Deps
	loader   *fakeLoader
	backend  *fakeBackend
	provider *fakeProvider
	hub      *broadcast.Hub
	clock    *clock.FakeClock
}

var errOffline = errors.New("dial tcp: network is unreachable")

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	f := &fixture{
		loader: &fakeLoader{},
		backend: &fakeBackend{
			customer:     &paymentdomain.Customer{ID: "cus_1", CommunityID: "c-1"},
			sources:      paymentdomain.SourceList{Data: []paymentdomain.Source{{ID: "src_1", Type: "card"}}},
			pages:        [][]paymentdomain.Invoice{invoices("in_", 5)},
			updateAnswer: paymentdomain.UpdateSucceeded,
		},
		provider: &fakeProvider{
			result: paymentdomain.SourceResult{Source: &paymentdomain.Source{ID: "src_new", Type: "card"}},
		},
		hub:   broadcast.NewHub(),
		clock: clk,
	}
	f.deps = Deps{
		Cfg: config.Config{
			Plans: config.PlanResourceConfig{Name: "Restvo Plans", Locale: "en-US", TTL: time.Hour},
			Shell: config.ShellConfig{RegisterURL: "https://app.restvo.com/register"},
		},
		Console:   config.NewStaticConsoleConfigHolder(config.DefaultConsoleConfig()),
		Log:       zaptest.NewLogger(t),
		Resources: f.loader,
		Cache:     cache.NewMemoryStore(clk),
		Backend:   f.backend,
		Directory: fakeDirectory{users: 42},
		Provider:  f.provider,
		Hub:       f.hub,
		Clock:     clk,
	}
	return f
}

func (f *fixture) workflow(t *testing.T) *Workflow {
	t.Helper()
	w := NewWorkflow("1", f.deps)
	t.Cleanup(w.Teardown)
	return w
}

func invoices(prefix string, n int) []paymentdomain.Invoice {
	out := make([]paymentdomain.Invoice, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, paymentdomain.Invoice{ID: prefix + string(rune('a'+i))})
	}
	return out
}
