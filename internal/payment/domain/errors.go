package domain

import "errors"

var (
	ErrProviderNotFound = errors.New("payment_provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_payment_config")
	ErrInvalidCommunity = errors.New("invalid_community_id")
	ErrCustomerNotFound = errors.New("billing_customer_not_found")
	ErrInvalidSource    = errors.New("invalid_source")
	ErrInvalidAnchor    = errors.New("invalid_mount_anchor")
	ErrForeignWidget    = errors.New("widget_not_created_by_provider")
	ErrBackendRejected  = errors.New("payment_backend_rejected")
	ErrBackendOpen      = errors.New("payment_backend_unavailable")
)
