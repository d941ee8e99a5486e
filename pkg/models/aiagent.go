package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AIAgent is a configured automated call agent. Voice execution is not
// performed here; the config is what the dashboard manages.
type AIAgent struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Voice       string `json:"voice,omitempty"`
	Script      string `gorm:"type:text" json:"script,omitempty"`
	Status      string `gorm:"default:inactive" json:"status"`

	CallsToday  int     `gorm:"default:0" json:"calls_today"`
	SuccessRate float64 `gorm:"default:0" json:"success_rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the ai_agents table name
func (AIAgent) TableName() string {
	return "ai_agents"
}

// BeforeCreate assigns a UUID primary key
func (a *AIAgent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AIAgentRequest creates or updates an agent configuration
type AIAgentRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
	Voice       string `json:"voice"`
	Script      string `json:"script"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive paused"`
}
