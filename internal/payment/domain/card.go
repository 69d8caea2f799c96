package domain

import "context"

type ElementsOptions struct {
	Locale string
}

type CardStyle struct {
	IconColor        string `json:"icon_color"`
	Color            string `json:"color"`
	FontWeight       int    `json:"font_weight"`
	FontFamily       string `json:"font_family"`
	FontSize         string `json:"font_size"`
	PlaceholderColor string `json:"placeholder_color"`
}

type SourceParams struct {
	Type     string
	Currency string
	Owner    Owner
}

// ProviderError is a user-facing rejection from the card provider, e.g. a decline.
type ProviderError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string { return e.Message }

// SourceResult carries exactly one of Source or Error.
type SourceResult struct {
	Source *Source
	Error  *ProviderError
}

type CardProvider interface {
	Elements(ctx context.Context, opts ElementsOptions) (ElementsContext, error)
	CreateSource(ctx context.Context, widget CardWidget, params SourceParams) (SourceResult, error)
}

type ElementsContext interface {
	CreateCard(style CardStyle) (CardWidget, error)
}

// CardWidget holds card input captured on the client. Mount may be called
// repeatedly with different anchors; Clear drops the entered value only.
type CardWidget interface {
	Mount(anchor string) error
	Clear()
	Input(value string)
	Value() string
	Anchor() string
}
