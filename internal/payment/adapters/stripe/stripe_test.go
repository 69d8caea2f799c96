package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"github.com/smallbiznis/billingconsole/internal/payment/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeStripe struct {
	mu       sync.Mutex
	requests []*http.Request
	forms    []map[string][]string
}

func (f *fakeStripe) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/balance", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusForbidden, map[string]any{"error": map[string]any{
			"type":    "invalid_request_error",
			"message": "The provided key does not have the required permissions for this endpoint.",
		}})
	})
	mux.HandleFunc("/v1/customers/cus_1", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.Method == http.MethodPost && r.PostForm.Get("source") == "src_bad" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{
				"type":    "invalid_request_error",
				"code":    "resource_missing",
				"message": "No such source: 'src_bad'",
			}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":             "cus_1",
			"object":         "customer",
			"name":           "Alpha Community",
			"email":          "billing@alpha.test",
			"default_source": "src_1",
		})
	})
	mux.HandleFunc("/v1/customers/cus_gone", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{
			"type":    "invalid_request_error",
			"code":    "resource_missing",
			"message": "No such customer: 'cus_gone'",
		}})
	})
	mux.HandleFunc("/v1/customers/cus_1/sources", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{
			"object":   "list",
			"url":      "/v1/customers/cus_1/sources",
			"has_more": false,
			"data": []any{map[string]any{
				"id":     "src_1",
				"object": "source",
				"type":   "card",
				"status": "chargeable",
				"card": map[string]any{
					"brand":     "Visa",
					"last4":     "4242",
					"exp_month": 12,
					"exp_year":  2030,
					"funding":   "credit",
				},
				"owner": map[string]any{
					"name":  "Ada",
					"email": "ada@alpha.test",
					"address": map[string]any{
						"line1":       "1 Main St",
						"city":        "Springfield",
						"state":       "IL",
						"postal_code": "62701",
						"country":     "US",
					},
				},
			}},
		})
	})
	mux.HandleFunc("/v1/invoices", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		data := []any{}
		for i := 0; i < 3; i++ {
			data = append(data, map[string]any{
				"id":          fmt.Sprintf("in_%d", i+1),
				"object":      "invoice",
				"number":      fmt.Sprintf("A-%04d", i+1),
				"status":      "paid",
				"currency":    "usd",
				"amount_due":  2500,
				"amount_paid": 2500,
				"created":     1700000000 - i*86400,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"object": "list", "url": "/v1/invoices", "has_more": true, "data": data})
	})
	mux.HandleFunc("/v1/sources", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.PostForm.Get("token") == "tok_chargeDeclined" {
			writeJSON(w, http.StatusPaymentRequired, map[string]any{"error": map[string]any{
				"type":    "card_error",
				"code":    "card_declined",
				"message": "Your card was declined.",
			}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":     "src_new",
			"object": "source",
			"type":   "card",
			"status": "chargeable",
			"card":   map[string]any{"brand": "Visa", "last4": "4242", "exp_month": 1, "exp_year": 2031},
		})
	})
	return mux
}

func (f *fakeStripe) record(r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
	f.forms = append(f.forms, r.Form)
}

func (f *fakeStripe) last() (*http.Request, map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1], f.forms[len(f.forms)-1]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func setupBackend(t *testing.T) (*Backend, *CardProvider, *fakeStripe) {
	t.Helper()
	fake := &fakeStripe{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&paymentdomain.BillingCustomer{}))

	repo := repository.Provide()
	now := time.Now().UTC()
	for community, customer := range map[string]string{"c-1": "cus_1", "c-gone": "cus_gone"} {
		require.NoError(t, repo.Upsert(context.Background(), db, &paymentdomain.BillingCustomer{
			CommunityID: community,
			Provider:    ProviderName,
			CustomerID:  customer,
			Metadata:    datatypes.JSONMap{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}))
	}

	api := NewClient(ClientConfig{SecretKey: "sk_test_123", APIURL: srv.URL, Timeout: 5 * time.Second})
	return NewBackend(api, db, repo, zaptest.NewLogger(t), 3), NewCardProvider(api), fake
}

func TestLoadCustomer(t *testing.T) {
	backend, _, _ := setupBackend(t)
	ctx := context.Background()

	customer, err := backend.LoadCustomer(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "cus_1", customer.ID)
	assert.Equal(t, "src_1", customer.DefaultSource)

	customer, err = backend.LoadCustomer(ctx, "c-unlinked")
	require.NoError(t, err)
	assert.Nil(t, customer)

	customer, err = backend.LoadCustomer(ctx, "c-gone")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestLoadBillingInfoMapsSources(t *testing.T) {
	backend, _, _ := setupBackend(t)

	list, err := backend.LoadBillingInfo(context.Background(), "c-1")
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())
	src := list.Data[0]
	assert.Equal(t, "src_1", src.ID)
	require.NotNil(t, src.Card)
	assert.Equal(t, "4242", src.Card.Last4)
	require.NotNil(t, src.Owner)
	assert.Equal(t, "Springfield", src.Owner.Address.City)

	_, err = backend.LoadBillingInfo(context.Background(), "c-unlinked")
	assert.ErrorIs(t, err, paymentdomain.ErrCustomerNotFound)
}

func TestListInvoicesForwardsCursor(t *testing.T) {
	backend, _, fake := setupBackend(t)

	invoices, err := backend.ListInvoices(context.Background(), "c-1", "?starting_after=in_9")
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "in_1", invoices[0].ID)
	assert.Equal(t, int64(2500), invoices[0].AmountDue)

	req, form := fake.last()
	assert.Equal(t, "/v1/invoices", req.URL.Path)
	assert.Equal(t, "cus_1", form["customer"][0])
	assert.Equal(t, "in_9", form["starting_after"][0])
	assert.Equal(t, "3", form["limit"][0])
	assert.Empty(t, form["ending_before"])

	_, err = backend.ListInvoices(context.Background(), "c-1", "?ending_before=in_1")
	require.NoError(t, err)
	_, form = fake.last()
	assert.Equal(t, "in_1", form["ending_before"][0])
}

func TestUpdateBillingMethod(t *testing.T) {
	backend, _, fake := setupBackend(t)
	ctx := context.Background()

	result, err := backend.UpdateBillingMethod(ctx, "c-1", paymentdomain.Source{ID: "src_new"})
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.UpdateSucceeded, result)
	req, form := fake.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "src_new", form["source"][0])

	result, err = backend.UpdateBillingMethod(ctx, "c-1", paymentdomain.Source{ID: "src_bad"})
	require.NoError(t, err)
	assert.NotEqual(t, paymentdomain.UpdateSucceeded, result)

	_, err = backend.UpdateBillingMethod(ctx, "c-1", paymentdomain.Source{})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSource)
}

func TestCardProviderCreatesSource(t *testing.T) {
	_, provider, fake := setupBackend(t)
	ctx := context.Background()

	elems, err := provider.Elements(ctx, paymentdomain.ElementsOptions{Locale: "en"})
	require.NoError(t, err)
	widget, err := elems.CreateCard(paymentdomain.CardStyle{Color: "#31325F"})
	require.NoError(t, err)
	require.NoError(t, widget.Mount("card-element-billing"))
	widget.Input("tok_visa")

	result, err := provider.CreateSource(ctx, widget, paymentdomain.SourceParams{
		Type:     "card",
		Currency: "usd",
		Owner: paymentdomain.Owner{
			Name:  "Ada",
			Email: "ada@alpha.test",
			Address: paymentdomain.Address{
				Line1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
			},
		},
	})
	require.NoError(t, err)
	require.Nil(t, result.Error)
	require.NotNil(t, result.Source)
	assert.Equal(t, "src_new", result.Source.ID)

	_, form := fake.last()
	assert.Equal(t, "card", form["type"][0])
	assert.Equal(t, "usd", form["currency"][0])
	assert.Equal(t, "tok_visa", form["token"][0])
	assert.Equal(t, "1 Main St", form["owner[address][line1]"][0])
	assert.Empty(t, form["owner[address][line2]"])
}

func TestCardProviderReportsDecline(t *testing.T) {
	_, provider, _ := setupBackend(t)
	ctx := context.Background()

	elems, err := provider.Elements(ctx, paymentdomain.ElementsOptions{Locale: "en"})
	require.NoError(t, err)
	widget, err := elems.CreateCard(paymentdomain.CardStyle{})
	require.NoError(t, err)
	require.NoError(t, widget.Mount("card-element-billing-modal"))
	widget.Input("tok_chargeDeclined")

	result, err := provider.CreateSource(ctx, widget, paymentdomain.SourceParams{Type: "card", Currency: "usd"})
	require.NoError(t, err)
	require.NotNil(t, result.Error)
	assert.Equal(t, "Your card was declined.", result.Error.Message)
	assert.Nil(t, result.Source)
}

func TestCardProviderRejectsEmptyWidget(t *testing.T) {
	_, provider, fake := setupBackend(t)
	elems, err := provider.Elements(context.Background(), paymentdomain.ElementsOptions{Locale: "en"})
	require.NoError(t, err)
	widget, err := elems.CreateCard(paymentdomain.CardStyle{})
	require.NoError(t, err)
	require.NoError(t, widget.Mount("card-element-billing"))

	fake.mu.Lock()
	before := len(fake.requests)
	fake.mu.Unlock()

	result, err := provider.CreateSource(context.Background(), widget, paymentdomain.SourceParams{Type: "card", Currency: "usd"})
	require.NoError(t, err)
	require.NotNil(t, result.Error)
	assert.Equal(t, "incomplete_number", result.Error.Code)

	fake.mu.Lock()
	assert.Equal(t, before, len(fake.requests))
	fake.mu.Unlock()
}

func TestElementsNeedsNoAccountCall(t *testing.T) {
	_, provider, fake := setupBackend(t)

	fake.mu.Lock()
	before := len(fake.requests)
	fake.mu.Unlock()

	elems, err := provider.Elements(context.Background(), paymentdomain.ElementsOptions{Locale: "en"})
	require.NoError(t, err)
	require.NotNil(t, elems)

	fake.mu.Lock()
	assert.Equal(t, before, len(fake.requests))
	fake.mu.Unlock()

	_, err = NewCardProvider(nil).Elements(context.Background(), paymentdomain.ElementsOptions{})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidConfig)
}

func TestCardWidgetClearKeepsMount(t *testing.T) {
	w := &cardWidget{}
	assert.ErrorIs(t, w.Mount(" "), paymentdomain.ErrInvalidAnchor)
	require.NoError(t, w.Mount("card-element-billing"))
	w.Input("tok_visa")
	w.Clear()
	assert.Empty(t, w.Value())
	assert.Equal(t, "card-element-billing", w.Anchor())
}
