package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/smallbiznis/billingconsole/internal/cache"
	"github.com/smallbiznis/billingconsole/internal/communitycontext"
	"github.com/smallbiznis/billingconsole/internal/notice"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	resourcedomain "github.com/smallbiznis/billingconsole/internal/resource/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Activate subscribes to status broadcasts and loads the screen. Calling it
// again reloads from scratch and keeps the existing subscription.
func (w *Workflow) Activate(ctx context.Context) error {
	if err := w.subscribe(); err != nil {
		return err
	}

	w.mu.Lock()
	if community, ok := communitycontext.FromContext(ctx); ok {
		w.community = community
	}
	w.invoices = []paymentdomain.Invoice{}
	communityID := w.community.ID
	w.mu.Unlock()

	return w.bootstrap(ctx, communityID)
}

func (w *Workflow) bootstrap(ctx context.Context, communityID string) error {
	ctx, stop := w.scoped(ctx)
	defer stop()

	w.loadResource(ctx)

	if communityID == "" {
		return nil
	}

	customer, err := w.deps.Backend.LoadCustomer(ctx, communityID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	activeUsers, err := w.deps.Directory.GetAppUserUsage(ctx, communityID)
	if err != nil {
		return fmt.Errorf("load app user usage: %w", err)
	}

	w.mu.Lock()
	w.customer = customer
	w.activeUsers = activeUsers
	if customer == nil {
		w.snapshot = nil
	}
	w.mu.Unlock()

	if customer == nil {
		w.log.Debug("community has no billing customer", zap.String("community_id", communityID))
		return nil
	}

	var g errgroup.Group
	g.Go(func() error { return w.loadBillingInfo(ctx, communityID) })
	g.Go(func() error { return w.fetchPage(ctx, communityID, domain.DirectionNone) })
	return g.Wait()
}

// loadResource surfaces a blocking notice on failure and leaves the resource unset.
func (w *Workflow) loadResource(ctx context.Context) {
	plans := w.deps.Cfg.Plans
	bucket := w.deps.Console.Get().ResourceBucket

	res, err := cache.LoadCached(ctx, w.deps.Cache, cache.Key("resource", plans.Locale),
		func(ctx context.Context) (resourcedomain.PlanResource, error) {
			return w.deps.Resources.Load(ctx, plans.Locale, plans.Name)
		},
		bucket, plans.TTL, cache.StalePolicyNone,
	)
	if err != nil {
		w.log.Warn("plan resource unavailable", zap.String("locale", plans.Locale), zap.Error(err))
		w.notices.Show(notice.NoConnection())
		return
	}

	w.mu.Lock()
	w.resource = &res
	w.mu.Unlock()
}

func (w *Workflow) loadBillingInfo(ctx context.Context, communityID string) error {
	sources, err := w.deps.Backend.LoadBillingInfo(ctx, communityID)
	if err != nil {
		return fmt.Errorf("load billing info: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	customerID := ""
	if w.customer != nil {
		customerID = w.customer.ID
	}
	w.snapshot = &domain.Snapshot{
		CustomerID:      customerID,
		HasStoredSource: sources.Len() > 0,
		Sources:         sources,
	}
	return nil
}
