package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
)

// Page fetches one invoice page and appends it, whatever the direction.
// EndOfInvoices is never changed here.
func (w *Workflow) Page(ctx context.Context, direction domain.Direction) error {
	if _, err := domain.ParseDirection(string(direction)); err != nil {
		return err
	}
	if w.isClosed() {
		return domain.ErrScreenClosed
	}
	communityID := w.communityID(ctx)
	if communityID == "" {
		return domain.ErrNoCommunity
	}

	ctx, stop := w.scoped(ctx)
	defer stop()
	return w.fetchPage(ctx, communityID, direction)
}

func (w *Workflow) fetchPage(ctx context.Context, communityID string, direction domain.Direction) error {
	w.mu.Lock()
	query, err := pageQuery(w.invoices, direction)
	w.mu.Unlock()
	if err != nil {
		return err
	}

	invoices, err := w.deps.Backend.ListInvoices(ctx, communityID, query)
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}

	w.mu.Lock()
	w.invoices = append(w.invoices, invoices...)
	w.mu.Unlock()
	w.deps.Metrics.RecordInvoicePage(ctx, direction.String(), len(invoices))
	return nil
}

func pageQuery(current []paymentdomain.Invoice, direction domain.Direction) (string, error) {
	switch direction {
	case domain.DirectionNone:
		return "", nil
	case domain.DirectionPrevious:
		if len(current) == 0 {
			return "", domain.ErrNoInvoices
		}
		return "?ending_before=" + url.QueryEscape(current[0].ID), nil
	case domain.DirectionNext:
		if len(current) == 0 {
			return "", domain.ErrNoInvoices
		}
		return "?starting_after=" + url.QueryEscape(current[len(current)-1].ID), nil
	default:
		return "", domain.ErrInvalidDirection
	}
}
