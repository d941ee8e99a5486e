package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailTemplate is a reusable outbound email body owned by one operator
type EmailTemplate struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index;type:uuid" json:"user_id"`

	Name         string `gorm:"not null" json:"name"`
	Subject      string `gorm:"not null" json:"subject"`
	Content      string `gorm:"type:text;not null" json:"content"`
	TemplateType string `json:"template_type,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the email_templates table name
func (EmailTemplate) TableName() string {
	return "email_templates"
}

// BeforeCreate assigns a UUID primary key
func (t *EmailTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// EmailTemplateRequest creates or updates a template
type EmailTemplateRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	Subject      string `json:"subject" validate:"required"`
	Content      string `json:"content" validate:"required"`
	TemplateType string `json:"template_type"`
	IsActive     *bool  `json:"is_active"`
}
