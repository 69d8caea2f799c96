package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/smallbiznis/billingconsole/internal/notice"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"go.uber.org/zap"
)

// Submit tokenizes the mounted card with the form's owner details and stores
// it as the community's billing method. Handled outcomes return a nil error;
// the user learns about them through notices. Every path ends in IDLE with
// the spinner cleared.
func (w *Workflow) Submit(ctx context.Context, form domain.BillingForm) (outcome domain.Outcome, err error) {
	if w.isClosed() {
		return "", domain.ErrScreenClosed
	}

	invalid := form.Validate()
	w.mu.Lock()
	w.form = form
	w.mu.Unlock()
	if invalid != nil {
		return "", invalid
	}

	ctx, stop := w.scoped(ctx)
	defer stop()

	w.start(ctx)
	defer func() {
		if r := recover(); r != nil {
			outcome, err = w.fail(ctx, fmt.Errorf("submit panic: %v", r))
		}
	}()

	communityID := w.communityID(ctx)
	if communityID == "" {
		return w.fail(ctx, domain.ErrNoCommunity)
	}
	w.mu.Lock()
	widget := w.card.Widget
	w.mu.Unlock()
	if widget == nil {
		return w.fail(ctx, domain.ErrCaptureNotStarted)
	}

	w.transition(ctx, domain.StateTokenizing)
	result, err := w.deps.Provider.CreateSource(ctx, widget, paymentdomain.SourceParams{
		Type:     "card",
		Currency: "usd",
		Owner:    form.Owner(),
	})
	if err != nil {
		return w.fail(ctx, fmt.Errorf("create source: %w", err))
	}
	if result.Error != nil {
		w.transition(ctx, domain.StateFailed)
		w.log.Info("card tokenization declined",
			zap.String("code", result.Error.Code),
			zap.String("message", result.Error.Message),
		)
		w.notices.Show(notice.ProviderFailure(result.Error.Message))
		return w.settle(ctx, domain.OutcomeDeclined), nil
	}
	if result.Source == nil {
		return w.fail(ctx, domain.ErrUnexpectedSource)
	}

	w.transition(ctx, domain.StateSuccessPendingBackend)
	answer, err := w.deps.Backend.UpdateBillingMethod(ctx, communityID, *result.Source)
	if err != nil {
		return w.fail(ctx, fmt.Errorf("update billing method: %w", err))
	}
	if answer != paymentdomain.UpdateSucceeded {
		w.transition(ctx, domain.StateDoneFail)
		w.notices.Show(notice.GenericFailure())
		return w.settle(ctx, domain.OutcomeRejected), nil
	}

	w.transition(ctx, domain.StateDoneOK)
	widget.Clear()
	w.mu.Lock()
	w.form = domain.BillingForm{}
	w.refreshNeeded = true
	w.mu.Unlock()
	if err := w.loadBillingInfo(ctx, communityID); err != nil {
		w.log.Warn("reload billing info after update failed", zap.Error(err))
	}
	w.notices.Show(notice.Success())
	return w.settle(ctx, domain.OutcomeSuccess), nil
}

func (w *Workflow) start(ctx context.Context) {
	w.mu.Lock()
	w.state = domain.StateSubmitting
	w.spinner = true
	w.transitions = []domain.SubmitState{domain.StateSubmitting}
	w.mu.Unlock()
	w.deps.Metrics.RecordTransition(ctx, string(domain.StateSubmitting))
}

func (w *Workflow) transition(ctx context.Context, next domain.SubmitState) {
	w.mu.Lock()
	w.state = next
	w.transitions = append(w.transitions, next)
	if next.Terminal() {
		w.spinner = false
	}
	w.mu.Unlock()
	w.deps.Metrics.RecordTransition(ctx, string(next))
}

// settle returns to IDLE and records the outcome.
func (w *Workflow) settle(ctx context.Context, outcome domain.Outcome) domain.Outcome {
	w.transition(ctx, domain.StateIdle)
	w.mu.Lock()
	w.spinner = false
	w.mu.Unlock()
	w.deps.Metrics.RecordSubmission(ctx, string(outcome))
	return outcome
}

// fail is the path for unexpected errors: generic notice, back to IDLE.
func (w *Workflow) fail(ctx context.Context, cause error) (domain.Outcome, error) {
	w.log.Error("submit billing method failed", zap.Error(cause))
	w.notices.Show(notice.GenericFailure())
	return w.settle(ctx, domain.OutcomeError), cause
}
