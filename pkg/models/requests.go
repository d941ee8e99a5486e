package models

// CreateLeadRequest creates a lead by manual form entry
type CreateLeadRequest struct {
	Name                  string   `json:"name" validate:"required,min=1"`
	Email                 string   `json:"email" validate:"omitempty,email"`
	Phone                 string   `json:"phone"`
	Company               string   `json:"company"`
	Status                string   `json:"status" validate:"omitempty,oneof=new cold warm hot qualified converted lost"`
	Source                string   `json:"source"`
	Priority              int      `json:"priority" validate:"omitempty,min=1,max=5"`
	LeadScore             int      `json:"lead_score" validate:"omitempty,min=0,max=100"`
	ConversionProbability float64  `json:"conversion_probability"`
	Notes                 string   `json:"notes"`
	Tags                  []string `json:"tags"`
	Timezone              string   `json:"timezone"`
	EstimatedValue        float64  `json:"estimated_value"`
	CampaignID            *string  `json:"campaign_id"`
}

// UpdateLeadRequest patches lead fields from the edit form. Pointer
// fields distinguish "not supplied" from zero values.
type UpdateLeadRequest struct {
	Name                  *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Email                 *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone                 *string  `json:"phone,omitempty"`
	Company               *string  `json:"company,omitempty"`
	Status                *string  `json:"status,omitempty" validate:"omitempty,oneof=new cold warm hot qualified converted lost"`
	Source                *string  `json:"source,omitempty"`
	Priority              *int     `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	LeadScore             *int     `json:"lead_score,omitempty" validate:"omitempty,min=0,max=100"`
	ConversionProbability *float64 `json:"conversion_probability,omitempty"`
	AssignedAgentID       *string  `json:"assigned_agent_id,omitempty"`
	NextFollowUpDate      *string  `json:"next_follow_up_date,omitempty"`
	Notes                 *string  `json:"notes,omitempty"`
	Tags                  []string `json:"tags,omitempty"`
	EstimatedValue        *float64 `json:"estimated_value,omitempty"`
	CampaignID            *string  `json:"campaign_id,omitempty"`
}

// LeadListRequest filters the lead list
type LeadListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=new cold warm hot qualified converted lost"`
	Search string `query:"search"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=200"`
}

// LeadListResponse is a paginated lead list
type LeadListResponse struct {
	Data       []Lead         `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// BulkActionRequest applies one action to a set of selected leads
type BulkActionRequest struct {
	Action          string   `json:"action" validate:"required,oneof=update_status assign_agent add_notes delete"`
	LeadIDs         []string `json:"lead_ids" validate:"required,min=1,dive,uuid"`
	Status          string   `json:"status" validate:"omitempty,oneof=new cold warm hot qualified converted lost"`
	AssignedAgentID string   `json:"assigned_agent_id" validate:"omitempty,uuid"`
	Notes           string   `json:"notes"`
	// AddNotes opts in to also writing notes alongside a status or
	// agent change
	AddNotes bool `json:"add_notes"`
}

// BulkActionResponse reports how many records the action touched
type BulkActionResponse struct {
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

// LogCallRequest records a completed call attempt
type LogCallRequest struct {
	LeadID          string `json:"lead_id" validate:"required,uuid"`
	CallStatus      string `json:"call_status" validate:"required,oneof=answered no_answer busy voicemail failed"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=0"`
	Outcome         string `json:"outcome" validate:"omitempty"`
	Notes           string `json:"notes"`
	FollowUpDate    string `json:"follow_up_date" validate:"omitempty"`
}

// LogEmailRequest records an email send against selected leads
type LogEmailRequest struct {
	LeadIDs    []string `json:"lead_ids" validate:"required,min=1,dive,uuid"`
	Subject    string   `json:"subject" validate:"required"`
	Content    string   `json:"content" validate:"required"`
	TemplateID string   `json:"template_id" validate:"omitempty,uuid"`
}
