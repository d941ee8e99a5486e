package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Call statuses an operator can record
const (
	CallStatusAnswered  = "answered"
	CallStatusNoAnswer  = "no_answer"
	CallStatusBusy      = "busy"
	CallStatusVoicemail = "voicemail"
	CallStatusFailed    = "failed"
)

// Call outcomes that drive lead scoring
const (
	OutcomeInterested        = "interested"
	OutcomeNotInterested     = "not_interested"
	OutcomeCallbackRequested = "callback_requested"
)

// CallLog records one call attempt against a lead. Rows are append-only:
// created by the interaction logger and never updated afterwards.
type CallLog struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	LeadID  string `gorm:"not null;index;type:uuid" json:"lead_id"`
	AgentID string `gorm:"not null;type:uuid" json:"agent_id"`
	UserID  string `gorm:"not null;index;type:uuid" json:"user_id"`

	CallType   string `gorm:"default:outbound" json:"call_type"`
	CallStatus string `gorm:"not null" json:"call_status"`
	Duration   int    `gorm:"default:0" json:"duration"` // seconds
	Notes      string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the call_logs table name
func (CallLog) TableName() string {
	return "call_logs"
}

// BeforeCreate assigns a UUID primary key
func (c *CallLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CallStats aggregates a user's call activity
type CallStats struct {
	TotalCalls      int     `json:"total_calls"`
	CompletedCalls  int     `json:"completed_calls"`
	FailedCalls     int     `json:"failed_calls"`
	TotalDuration   int     `json:"total_duration"`
	AverageDuration float64 `json:"average_duration"`
	SuccessRate     float64 `json:"success_rate"`
}
