package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Community struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Community) TableName() string { return "communities" }

// Member is a user of a community's app. Active members count toward billed usage.
type Member struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CommunityID string       `gorm:"type:text;not null;index" json:"community_id"`
	UserID      string       `gorm:"type:text;not null" json:"user_id"`
	Role        string       `gorm:"type:text;not null" json:"role"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Member) TableName() string { return "community_members" }

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)
