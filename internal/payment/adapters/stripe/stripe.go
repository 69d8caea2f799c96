package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ProviderName = "stripe"

type Factory struct {
	api       *client.API
	db        *gorm.DB
	repo      paymentdomain.Repository
	log       *zap.Logger
	pageLimit int64
}

func NewFactory(api *client.API, db *gorm.DB, repo paymentdomain.Repository, log *zap.Logger, pageLimit int64) *Factory {
	return &Factory{api: api, db: db, repo: repo, log: log, pageLimit: pageLimit}
}

func (f *Factory) Provider() string {
	return ProviderName
}

func (f *Factory) NewBackend() (paymentdomain.Backend, error) {
	if f.api == nil || f.db == nil || f.repo == nil {
		return nil, paymentdomain.ErrInvalidConfig
	}
	return NewBackend(f.api, f.db, f.repo, f.log, f.pageLimit), nil
}

// Backend serves billing data straight from Stripe, resolving the customer
// through the billing_customers mapping.
type Backend struct {
	api       *client.API
	db        *gorm.DB
	repo      paymentdomain.Repository
	log       *zap.Logger
	pageLimit int64
}

func NewBackend(api *client.API, db *gorm.DB, repo paymentdomain.Repository, log *zap.Logger, pageLimit int64) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	if pageLimit <= 0 {
		pageLimit = 10
	}
	return &Backend{api: api, db: db, repo: repo, log: log.Named("payment.stripe"), pageLimit: pageLimit}
}

func (b *Backend) LoadCustomer(ctx context.Context, communityID string) (*paymentdomain.Customer, error) {
	link, err := b.link(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, nil
	}

	params := &stripe.CustomerParams{}
	params.Context = ctx
	cust, err := b.api.Customers.Get(link.CustomerID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			b.log.Warn("linked customer missing at stripe", zap.String("community_id", communityID))
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if cust.Deleted {
		return nil, nil
	}

	customer := &paymentdomain.Customer{
		ID:          cust.ID,
		CommunityID: communityID,
		Name:        cust.Name,
		Email:       cust.Email,
	}
	if cust.DefaultSource != nil {
		customer.DefaultSource = cust.DefaultSource.ID
	}
	return customer, nil
}

func (b *Backend) LoadBillingInfo(ctx context.Context, communityID string) (paymentdomain.SourceList, error) {
	customerID, err := b.customerID(ctx, communityID)
	if err != nil {
		return paymentdomain.SourceList{}, err
	}

	params := &stripe.PaymentSourceListParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	params.Single = true

	iter := b.api.PaymentSources.List(params)
	list := paymentdomain.SourceList{Data: []paymentdomain.Source{}}
	for iter.Next() {
		if src := toSource(iter.PaymentSource()); src != nil {
			list.Data = append(list.Data, *src)
		}
	}
	if err := iter.Err(); err != nil {
		return paymentdomain.SourceList{}, fmt.Errorf("list sources: %w", err)
	}
	if meta := iter.PaymentSourceList(); meta != nil {
		list.HasMore = meta.HasMore
	}
	return list, nil
}

// UpdateBillingMethod attaches the source as the customer's default. Stripe
// rejections are reported as a non-success answer, not as an error.
func (b *Backend) UpdateBillingMethod(ctx context.Context, communityID string, source paymentdomain.Source) (string, error) {
	if strings.TrimSpace(source.ID) == "" {
		return "", paymentdomain.ErrInvalidSource
	}
	customerID, err := b.customerID(ctx, communityID)
	if err != nil {
		return "", err
	}

	params := &stripe.CustomerParams{Source: stripe.String(source.ID)}
	params.Context = ctx
	if _, err := b.api.Customers.Update(customerID, params); err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode > 0 && stripeErr.HTTPStatusCode < 500 {
			b.log.Info("stripe rejected source update",
				zap.String("community_id", communityID),
				zap.String("code", string(stripeErr.Code)),
			)
			return string(stripeErr.Type), nil
		}
		return "", fmt.Errorf("update customer source: %w", err)
	}
	return paymentdomain.UpdateSucceeded, nil
}

func (b *Backend) ListInvoices(ctx context.Context, communityID string, query string) ([]paymentdomain.Invoice, error) {
	customerID, err := b.customerID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	cursor, err := parseCursor(query)
	if err != nil {
		return nil, err
	}

	params := &stripe.InvoiceListParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	params.Single = true
	params.Limit = stripe.Int64(b.pageLimit)
	if cursor.startingAfter != "" {
		params.StartingAfter = stripe.String(cursor.startingAfter)
	}
	if cursor.endingBefore != "" {
		params.EndingBefore = stripe.String(cursor.endingBefore)
	}

	iter := b.api.Invoices.List(params)
	invoices := []paymentdomain.Invoice{}
	for iter.Next() {
		invoices = append(invoices, toInvoice(iter.Invoice()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (b *Backend) link(ctx context.Context, communityID string) (*paymentdomain.BillingCustomer, error) {
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return nil, paymentdomain.ErrInvalidCommunity
	}
	link, err := b.repo.FindByCommunity(ctx, b.db, communityID)
	if err != nil {
		return nil, fmt.Errorf("find billing customer: %w", err)
	}
	if link != nil && link.Provider != "" && link.Provider != ProviderName {
		return nil, nil
	}
	return link, nil
}

func (b *Backend) customerID(ctx context.Context, communityID string) (string, error) {
	link, err := b.link(ctx, communityID)
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", paymentdomain.ErrCustomerNotFound
	}
	return link.CustomerID, nil
}

type cursor struct {
	startingAfter string
	endingBefore  string
}

func parseCursor(query string) (cursor, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(query), "?"))
	if err != nil {
		return cursor{}, fmt.Errorf("parse invoice query: %w", err)
	}
	return cursor{
		startingAfter: values.Get("starting_after"),
		endingBefore:  values.Get("ending_before"),
	}, nil
}

func toSource(ps *stripe.PaymentSource) *paymentdomain.Source {
	if ps == nil {
		return nil
	}
	switch {
	case ps.Source != nil:
		src := ps.Source
		out := &paymentdomain.Source{ID: src.ID, Type: src.Type, Status: string(src.Status)}
		if src.Card != nil {
			out.Card = &paymentdomain.Card{
				Brand:    src.Card.Brand,
				Last4:    src.Card.Last4,
				ExpMonth: src.Card.ExpMonth,
				ExpYear:  src.Card.ExpYear,
				Funding:  src.Card.Funding,
			}
		}
		if src.Owner != nil {
			out.Owner = &paymentdomain.Owner{Name: src.Owner.Name, Email: src.Owner.Email}
			if addr := src.Owner.Address; addr != nil {
				out.Owner.Address = paymentdomain.Address{
					Line1:      addr.Line1,
					Line2:      addr.Line2,
					City:       addr.City,
					State:      addr.State,
					PostalCode: addr.PostalCode,
					Country:    addr.Country,
				}
			}
		}
		return out
	case ps.Card != nil:
		card := ps.Card
		return &paymentdomain.Source{
			ID:   card.ID,
			Type: string(stripe.PaymentSourceTypeCard),
			Card: &paymentdomain.Card{
				Brand:    string(card.Brand),
				Last4:    card.Last4,
				ExpMonth: card.ExpMonth,
				ExpYear:  card.ExpYear,
				Funding:  string(card.Funding),
			},
		}
	default:
		return &paymentdomain.Source{ID: ps.ID, Type: string(ps.Type)}
	}
}

func toInvoice(inv *stripe.Invoice) paymentdomain.Invoice {
	return paymentdomain.Invoice{
		ID:               inv.ID,
		Number:           inv.Number,
		Status:           string(inv.Status),
		Currency:         string(inv.Currency),
		AmountDue:        inv.AmountDue,
		AmountPaid:       inv.AmountPaid,
		Created:          time.Unix(inv.Created, 0).UTC(),
		HostedInvoiceURL: inv.HostedInvoiceURL,
		InvoicePDF:       inv.InvoicePDF,
	}
}

var _ paymentdomain.Backend = (*Backend)(nil)
