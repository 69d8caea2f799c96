package repository

import (
	"context"

	"github.com/smallbiznis/billingconsole/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCommunity(ctx context.Context, db *gorm.DB, communityID string) (*domain.BillingCustomer, error) {
	var item domain.BillingCustomer
	err := db.WithContext(ctx).Raw(
		`SELECT community_id, provider, customer_id, metadata, created_at, updated_at
		 FROM billing_customers
		 WHERE community_id = ?
		 LIMIT 1`,
		communityID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.CommunityID == "" {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, customer *domain.BillingCustomer) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "customer_id", "metadata", "updated_at"}),
	}).Create(customer).Error
}
