package domain

import (
	"time"

	"gorm.io/datatypes"
)

// PlanResource is the locale-scoped pricing description shown on the billing screen.
type PlanResource struct {
	Name      string         `json:"name" gorm:"primaryKey;type:text"`
	Locale    string         `json:"locale" gorm:"primaryKey;type:text"`
	Version   int64          `json:"version" gorm:"not null;default:1"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

func (PlanResource) TableName() string { return "plan_resources" }
