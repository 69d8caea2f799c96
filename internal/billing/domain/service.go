package domain

import (
	"context"
)

// Screen is one billing screen instance driven by its presenter.
type Screen interface {
	ID() string
	Activate(ctx context.Context) error
	SetModal(modal bool)
	Enter()
	RequestCardUpdate(ctx context.Context) (redirectURL string, err error)
	BeginCapture(ctx context.Context) error
	InputCard(value string) error
	Submit(ctx context.Context, form BillingForm) (Outcome, error)
	Page(ctx context.Context, direction Direction) error
	View() View
	Close() bool
	Teardown()
}

// Manager keeps the open screens of this process.
type Manager interface {
	Open(ctx context.Context, modal bool) (Screen, error)
	Get(id string) (Screen, error)
	Remove(id string) error
	Count() int
}
