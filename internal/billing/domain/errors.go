package domain

import "errors"

var (
	ErrInvalidForm        = errors.New("invalid_billing_form")
	ErrInvalidDirection   = errors.New("invalid_page_direction")
	ErrNoCommunity        = errors.New("no_managed_community")
	ErrNoInvoices         = errors.New("no_invoices_loaded")
	ErrCaptureUnavailable = errors.New("card_capture_unavailable")
	ErrCaptureNotStarted  = errors.New("card_capture_not_started")
	ErrUnexpectedSource   = errors.New("provider_returned_no_source")
	ErrScreenClosed       = errors.New("screen_closed")
	ErrScreenNotFound     = errors.New("screen_not_found")
	ErrInvalidScreenID    = errors.New("invalid_screen_id")
)
