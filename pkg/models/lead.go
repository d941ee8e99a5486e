package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead statuses as they move through the pipeline
const (
	LeadStatusNew       = "new"
	LeadStatusCold      = "cold"
	LeadStatusWarm      = "warm"
	LeadStatusHot       = "hot"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// LeadStatuses lists every valid pipeline status
var LeadStatuses = []string{
	LeadStatusNew, LeadStatusCold, LeadStatusWarm, LeadStatusHot,
	LeadStatusQualified, LeadStatusConverted, LeadStatusLost,
}

// Lead represents a prospective contact tracked through the sales pipeline
type Lead struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"index" json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`

	Status   string `gorm:"index;default:new" json:"status"`
	Source   string `json:"source,omitempty"`
	Priority int    `gorm:"default:1" json:"priority"`

	LeadScore             int     `gorm:"default:0" json:"lead_score"`
	ConversionProbability float64 `gorm:"default:0" json:"conversion_probability"`

	// UserID is stamped at creation and never reassigned
	UserID          string  `gorm:"not null;index;type:uuid" json:"user_id"`
	AssignedAgentID *string `gorm:"type:uuid" json:"assigned_agent_id,omitempty"`
	CampaignID      *string `gorm:"type:uuid" json:"campaign_id,omitempty"`

	LastContactDate     *time.Time  `json:"last_contact_date,omitempty"`
	LastInteractionType string      `json:"last_interaction_type,omitempty"`
	InteractionCount    int         `gorm:"default:0" json:"interaction_count"`
	NextFollowUpDate    *time.Time  `json:"next_follow_up_date,omitempty"`
	CallOutcome         string      `json:"call_outcome,omitempty"`
	EmailHistory        EmailEvents `gorm:"type:text" json:"email_history,omitempty"`
	CallHistory         JSONMap     `gorm:"type:text" json:"call_history,omitempty"`

	Tags                   StringList `gorm:"type:text" json:"tags,omitempty"`
	Timezone               string     `json:"timezone,omitempty"`
	PreferredContactMethod string     `json:"preferred_contact_method,omitempty"`
	EstimatedValue         float64    `gorm:"default:0" json:"estimated_value"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the leads table name
func (Lead) TableName() string {
	return "leads"
}

// BeforeCreate assigns a UUID so the schema is portable across drivers
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// EmailEvent is one entry in a lead's email history log
type EmailEvent struct {
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	SentAt       time.Time `json:"sent_at"`
	TemplateUsed string    `json:"template_used"`
}

// ValidLeadStatus reports whether s is a known pipeline status
func ValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}
