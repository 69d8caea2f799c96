package domain

import (
	"context"
	"time"
)

// UpdateSucceeded is the only backend answer that counts as a stored card.
const UpdateSucceeded = "success"

type Customer struct {
	ID            string `json:"id"`
	CommunityID   string `json:"community_id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	DefaultSource string `json:"default_source,omitempty"`
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Owner struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address Address `json:"address"`
}

type Card struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
	Funding  string `json:"funding,omitempty"`
}

// Source is a tokenized payment method as issued by the provider.
type Source struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
	Card   *Card  `json:"card,omitempty"`
	Owner  *Owner `json:"owner,omitempty"`
}

type SourceList struct {
	Data    []Source `json:"data"`
	HasMore bool     `json:"has_more"`
}

func (l SourceList) Len() int { return len(l.Data) }

type Invoice struct {
	ID               string    `json:"id"`
	Number           string    `json:"number,omitempty"`
	Status           string    `json:"status,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	AmountDue        int64     `json:"amount_due"`
	AmountPaid       int64     `json:"amount_paid"`
	Created          time.Time `json:"created"`
	HostedInvoiceURL string    `json:"hosted_invoice_url,omitempty"`
	InvoicePDF       string    `json:"invoice_pdf,omitempty"`
}

// Backend is the application backend that owns customers, stored cards and invoices.
type Backend interface {
	// LoadCustomer returns nil, nil when the community has no customer yet.
	LoadCustomer(ctx context.Context, communityID string) (*Customer, error)
	LoadBillingInfo(ctx context.Context, communityID string) (SourceList, error)
	// UpdateBillingMethod returns UpdateSucceeded or the backend's other answer.
	UpdateBillingMethod(ctx context.Context, communityID string, source Source) (string, error)
	// ListInvoices takes a query such as "?starting_after=in_1" or "".
	ListInvoices(ctx context.Context, communityID string, query string) ([]Invoice, error)
}
