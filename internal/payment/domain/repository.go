package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByCommunity(ctx context.Context, db *gorm.DB, communityID string) (*BillingCustomer, error)
	Upsert(ctx context.Context, db *gorm.DB, customer *BillingCustomer) error
}
