package domain

import (
	"time"

	"gorm.io/datatypes"
)

// BillingCustomer links a community to its customer record at a payment provider.
type BillingCustomer struct {
	CommunityID string            `json:"community_id" gorm:"primaryKey;type:text"`
	Provider    string            `json:"provider" gorm:"type:text;not null"`
	CustomerID  string            `json:"customer_id" gorm:"type:text;not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null"`
}

func (BillingCustomer) TableName() string { return "billing_customers" }
