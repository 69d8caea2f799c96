package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationIsAppendOnly(t *testing.T) {
	f := newFixture(t)
	f.backend.pages = [][]paymentdomain.Invoice{
		invoices("in_", 2),
		invoices("nx_", 3),
		invoices("pv_", 1),
	}
	w := f.workflow(t)
	require.NoError(t, w.Activate(communityCtx("c-1")))

	require.NoError(t, w.Page(context.Background(), domain.DirectionNext))
	require.NoError(t, w.Page(context.Background(), domain.DirectionPrevious))

	view := w.View()
	require.Len(t, view.Invoices, 6)
	assert.Equal(t, "in_a", view.Invoices[0].ID)
	assert.Equal(t, "pv_a", view.Invoices[5].ID)
	assert.False(t, view.EndOfInvoices)
	assert.Equal(t, []string{"", "?starting_after=in_b", "?ending_before=in_a"}, f.backend.Queries())
}

func TestPageLengthMatchesSumOfPages(t *testing.T) {
	f := newFixture(t)
	sizes := []int{4, 0, 2, 7}
	f.backend.pages = nil
	for i, n := range sizes {
		f.backend.pages = append(f.backend.pages, invoices(string(rune('a'+i))+"_", n))
	}
	w := f.workflow(t)
	require.NoError(t, w.Activate(communityCtx("c-1")))

	directions := []domain.Direction{domain.DirectionNext, domain.DirectionPrevious, domain.DirectionNone}
	for _, d := range directions {
		require.NoError(t, w.Page(context.Background(), d))
	}
	assert.Len(t, w.View().Invoices, 13)
}

func TestPageRequiresLoadedInvoicesForCursor(t *testing.T) {
	f := newFixture(t)
	f.backend.customer = nil
	w := f.workflow(t)
	require.NoError(t, w.Activate(communityCtx("c-1")))

	assert.ErrorIs(t, w.Page(context.Background(), domain.DirectionNext), domain.ErrNoInvoices)
	assert.ErrorIs(t, w.Page(context.Background(), domain.DirectionPrevious), domain.ErrNoInvoices)
	assert.ErrorIs(t, w.Page(context.Background(), domain.Direction("sideways")), domain.ErrInvalidDirection)
	assert.Empty(t, f.backend.Queries())
}

func TestPageWithoutCommunity(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(t)
	assert.ErrorIs(t, w.Page(context.Background(), domain.DirectionNone), domain.ErrNoCommunity)
}

func TestPageQueryEscapesCursor(t *testing.T) {
	query, err := pageQuery([]paymentdomain.Invoice{{ID: "in 1&x"}}, domain.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, "?starting_after=in+1%26x", query)
}
