package domain

import (
	"time"

	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
	resourcedomain "github.com/smallbiznis/billingconsole/internal/resource/domain"
)

const (
	AnchorInline = "card-element-billing"
	AnchorModal  = AnchorInline + "-modal"
)

// AnchorFor returns the mount target for the given presentation.
func AnchorFor(modal bool) string {
	if modal {
		return AnchorModal
	}
	return AnchorInline
}

// Snapshot is the customer's billing state. It is replaced wholesale on reload.
type Snapshot struct {
	CustomerID      string                   `json:"customer_id"`
	HasStoredSource bool                     `json:"has_stored_source"`
	Sources         paymentdomain.SourceList `json:"sources"`
}

// CardElement is the screen's single card widget and where it is mounted.
type CardElement struct {
	Widget  paymentdomain.CardWidget `json:"-"`
	Mounted bool                     `json:"mounted"`
	Anchor  string                   `json:"anchor,omitempty"`
}

type SubmitState string

const (
	StateIdle                  SubmitState = "IDLE"
	StateSubmitting            SubmitState = "SUBMITTING"
	StateTokenizing            SubmitState = "TOKENIZING"
	StateSuccessPendingBackend SubmitState = "SUCCESS_PENDING_BACKEND"
	StateFailed                SubmitState = "FAILED"
	StateDoneOK                SubmitState = "DONE_OK"
	StateDoneFail              SubmitState = "DONE_FAIL"
)

// Terminal reports whether the spinner must be cleared on entering s.
func (s SubmitState) Terminal() bool {
	switch s {
	case StateFailed, StateDoneOK, StateDoneFail:
		return true
	default:
		return false
	}
}

// Outcome summarizes how a submission settled.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDeclined Outcome = "declined"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

type Direction string

const (
	DirectionNone     Direction = ""
	DirectionPrevious Direction = "previous"
	DirectionNext     Direction = "next"
)

func ParseDirection(raw string) (Direction, error) {
	switch Direction(raw) {
	case DirectionNone, DirectionPrevious, DirectionNext:
		return Direction(raw), nil
	default:
		return DirectionNone, ErrInvalidDirection
	}
}

func (d Direction) String() string {
	if d == DirectionNone {
		return "first"
	}
	return string(d)
}

// View is a point-in-time copy of a screen's state for the presenter.
type View struct {
	ScreenID            string                       `json:"screen_id"`
	CommunityID         string                       `json:"community_id,omitempty"`
	Modal               bool                         `json:"modal"`
	Anchor              string                       `json:"anchor"`
	Card                CardElement                  `json:"card"`
	Resource            *resourcedomain.PlanResource `json:"resource,omitempty"`
	Customer            *paymentdomain.Customer      `json:"customer,omitempty"`
	Snapshot            *Snapshot                    `json:"snapshot,omitempty"`
	Invoices            []paymentdomain.Invoice      `json:"invoices"`
	EndOfInvoices       bool                         `json:"end_of_invoices"`
	NumberOfActiveUsers int64                        `json:"number_of_active_users"`
	UpdatePayment       bool                         `json:"update_payment"`
	Spinner             bool                         `json:"spinner"`
	State               SubmitState                  `json:"state"`
	Form                BillingForm                  `json:"form"`
	RefreshNeeded       bool                         `json:"refresh_needed"`
	OpenedAt            time.Time                    `json:"opened_at"`
}
