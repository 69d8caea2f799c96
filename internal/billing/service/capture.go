package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/smallbiznis/billingconsole/internal/config"
	"github.com/smallbiznis/billingconsole/internal/notice"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	"go.uber.org/zap"
)

// RequestCardUpdate starts in-place card editing, or inside the native shell
// raises a redirect notice and returns the external URL instead.
func (w *Workflow) RequestCardUpdate(ctx context.Context) (string, error) {
	if w.isClosed() {
		return "", domain.ErrScreenClosed
	}
	shell := w.deps.Cfg.Shell
	if shell.NativeShell {
		w.notices.Show(notice.Redirect(shell.RegisterURL))
		return shell.RegisterURL, nil
	}

	w.mu.Lock()
	w.updatePayment = true
	w.mu.Unlock()
	return "", w.BeginCapture(ctx)
}

// BeginCapture creates the card widget on first use and mounts it to the
// current anchor. Later calls only remount the same widget.
func (w *Workflow) BeginCapture(ctx context.Context) error {
	w.captureMu.Lock()
	defer w.captureMu.Unlock()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrScreenClosed
	}
	if w.captureErr != nil {
		err := w.captureErr
		w.mu.Unlock()
		return err
	}
	widget := w.card.Widget
	anchor := w.anchor
	w.mu.Unlock()

	if widget == nil {
		ctx, stop := w.scoped(ctx)
		defer stop()

		console := w.deps.Console.Get()
		elements, err := w.deps.Provider.Elements(ctx, paymentdomain.ElementsOptions{Locale: console.ElementsLocale})
		if err != nil {
			return w.captureUnavailable(err)
		}
		widget, err = elements.CreateCard(cardStyle(console.CardStyle))
		if err != nil {
			return w.captureUnavailable(err)
		}
		w.mu.Lock()
		w.card.Widget = widget
		w.mu.Unlock()
	}

	if err := widget.Mount(anchor); err != nil {
		return fmt.Errorf("mount card widget: %w", err)
	}

	w.mu.Lock()
	w.card = domain.CardElement{Widget: widget, Mounted: true, Anchor: anchor}
	w.mu.Unlock()
	return nil
}

// InputCard forwards client-side card input to the mounted widget.
func (w *Workflow) InputCard(value string) error {
	w.mu.Lock()
	widget := w.card.Widget
	w.mu.Unlock()
	if widget == nil {
		return domain.ErrCaptureNotStarted
	}
	widget.Input(value)
	return nil
}

func (w *Workflow) captureUnavailable(cause error) error {
	err := fmt.Errorf("%w: %v", domain.ErrCaptureUnavailable, cause)
	w.mu.Lock()
	w.captureErr = err
	w.mu.Unlock()
	w.log.Error("card capture unavailable", zap.Error(cause))
	return err
}

func cardStyle(style config.CardStyle) paymentdomain.CardStyle {
	return paymentdomain.CardStyle{
		IconColor:        style.IconColor,
		Color:            style.Color,
		FontWeight:       style.FontWeight,
		FontFamily:       style.FontFamily,
		FontSize:         style.FontSize,
		PlaceholderColor: style.PlaceholderColor,
	}
}
