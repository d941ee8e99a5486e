package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Campaign groups leads under one outreach effort with a budget and date range
type Campaign struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index;type:uuid" json:"user_id"`

	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	Budget      float64   `gorm:"not null" json:"budget"`
	Spent       float64   `gorm:"default:0" json:"spent"`
	Status      string    `gorm:"default:draft" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the campaigns table name
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate assigns a UUID primary key
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CampaignRequest creates or updates a campaign
type CampaignRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" validate:"required"`
	Budget      float64 `json:"budget" validate:"required,gt=0"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft active paused completed"`
}

// CampaignResponse is a campaign with derived lead counts
type CampaignResponse struct {
	Campaign
	TotalLeads     int64 `json:"total_leads"`
	ConvertedLeads int64 `json:"converted_leads"`
}
