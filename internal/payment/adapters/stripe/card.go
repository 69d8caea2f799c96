package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// CardProvider turns client-side card tokens into reusable Stripe sources.
type CardProvider struct {
	api *client.API
}

func NewCardProvider(api *client.API) *CardProvider {
	return &CardProvider{api: api}
}

// Elements is local: it only needs a configured client. Reachability and key
// permissions surface from CreateSource.
func (p *CardProvider) Elements(_ context.Context, opts paymentdomain.ElementsOptions) (paymentdomain.ElementsContext, error) {
	if p == nil || p.api == nil {
		return nil, fmt.Errorf("stripe elements: %w", paymentdomain.ErrInvalidConfig)
	}
	return &elements{locale: strings.TrimSpace(opts.Locale)}, nil
}

func (p *CardProvider) CreateSource(ctx context.Context, widget paymentdomain.CardWidget, params paymentdomain.SourceParams) (paymentdomain.SourceResult, error) {
	card, ok := widget.(*cardWidget)
	if !ok || card == nil {
		return paymentdomain.SourceResult{}, paymentdomain.ErrForeignWidget
	}
	if card.Anchor() == "" {
		return paymentdomain.SourceResult{}, paymentdomain.ErrInvalidAnchor
	}
	token := strings.TrimSpace(card.Value())
	if token == "" {
		return paymentdomain.SourceResult{Error: &paymentdomain.ProviderError{
			Type:    "validation_error",
			Code:    "incomplete_number",
			Message: "Your card number is incomplete.",
		}}, nil
	}

	addr := params.Owner.Address
	req := &stripe.SourceParams{
		Type:     stripe.String(params.Type),
		Currency: stripe.String(params.Currency),
		Token:    stripe.String(token),
		Owner: &stripe.SourceOwnerParams{
			Name:  stripe.String(params.Owner.Name),
			Email: stripe.String(params.Owner.Email),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(addr.Line1),
				City:       stripe.String(addr.City),
				State:      stripe.String(addr.State),
				PostalCode: stripe.String(addr.PostalCode),
				Country:    stripe.String(addr.Country),
			},
		},
	}
	if addr.Line2 != "" {
		req.Owner.Address.Line2 = stripe.String(addr.Line2)
	}
	req.Context = ctx

	src, err := p.api.Sources.New(req)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && isUserFacing(stripeErr) {
			return paymentdomain.SourceResult{Error: &paymentdomain.ProviderError{
				Type:    string(stripeErr.Type),
				Code:    string(stripeErr.Code),
				Message: stripeErr.Msg,
			}}, nil
		}
		return paymentdomain.SourceResult{}, fmt.Errorf("create source: %w", err)
	}

	return paymentdomain.SourceResult{Source: toSource(&stripe.PaymentSource{
		ID:     src.ID,
		Type:   stripe.PaymentSourceTypeSource,
		Source: src,
	})}, nil
}

func isUserFacing(err *stripe.Error) bool {
	switch err.Type {
	case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
		return err.Msg != ""
	default:
		return false
	}
}

type elements struct {
	locale string
}

func (e *elements) CreateCard(style paymentdomain.CardStyle) (paymentdomain.CardWidget, error) {
	return &cardWidget{locale: e.locale, style: style}, nil
}

type cardWidget struct {
	mu     sync.Mutex
	locale string
	style  paymentdomain.CardStyle
	anchor string
	value  string
}

func (w *cardWidget) Mount(anchor string) error {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return paymentdomain.ErrInvalidAnchor
	}
	w.mu.Lock()
	w.anchor = anchor
	w.mu.Unlock()
	return nil
}

func (w *cardWidget) Clear() {
	w.mu.Lock()
	w.value = ""
	w.mu.Unlock()
}

func (w *cardWidget) Input(value string) {
	w.mu.Lock()
	w.value = strings.TrimSpace(value)
	w.mu.Unlock()
}

func (w *cardWidget) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func (w *cardWidget) Anchor() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.anchor
}

var (
	_ paymentdomain.CardProvider = (*CardProvider)(nil)
	_ paymentdomain.CardWidget   = (*cardWidget)(nil)
)
