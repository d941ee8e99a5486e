package aiagents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/models"
)

var ErrAgentNotFound = errors.New("ai agent not found")

// Service manages automated call agent configurations. Agents are
// shared across operators; only admins may change them.
type Service struct {
	db        *gorm.DB
	assistant ScriptAssistant
}

// NewService creates a new AI agent service
func NewService(db *gorm.DB, assistant ScriptAssistant) *Service {
	if assistant == nil {
		assistant = NewDisabledAssistant()
	}
	return &Service{db: db, assistant: assistant}
}

// List returns every configured agent
func (s *Service) List(ctx context.Context) ([]models.AIAgent, error) {
	var agents []models.AIAgent
	if err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// GetByID returns one agent
func (s *Service) GetByID(ctx context.Context, agentID string) (*models.AIAgent, error) {
	var a models.AIAgent
	err := s.db.WithContext(ctx).First(&a, "id = ?", agentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &a, nil
}

// Create adds a new agent configuration
func (s *Service) Create(ctx context.Context, req models.AIAgentRequest) (*models.AIAgent, error) {
	status := req.Status
	if status == "" {
		status = "inactive"
	}
	a := &models.AIAgent{
		Name:        req.Name,
		Description: req.Description,
		Voice:       req.Voice,
		Script:      req.Script,
		Status:      status,
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return a, nil
}

// Update patches an agent configuration
func (s *Service) Update(ctx context.Context, agentID string, req models.AIAgentRequest) (*models.AIAgent, error) {
	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"voice":       req.Voice,
		"script":      req.Script,
		"updated_at":  time.Now().UTC(),
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	res := s.db.WithContext(ctx).Model(&models.AIAgent{}).
		Where("id = ?", agentID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update agent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAgentNotFound
	}
	return s.GetByID(ctx, agentID)
}

// Delete removes an agent configuration
func (s *Service) Delete(ctx context.Context, agentID string) error {
	res := s.db.WithContext(ctx).Delete(&models.AIAgent{}, "id = ?", agentID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete agent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAgentNotFound
	}
	return nil
}

// ImproveScript asks the configured assistant to rewrite a call script
func (s *Service) ImproveScript(ctx context.Context, script, goal string) (string, error) {
	return s.assistant.ImproveScript(ctx, script, goal)
}

// Seed inserts the default agent roster on an empty table
func (s *Service) Seed(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AIAgent{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count agents: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []models.AIAgent{
		{
			Name:        "Cold Caller",
			Description: "Introduces the product to brand new leads and qualifies interest",
			Voice:       "alloy",
			Script:      "Hi {{name}}, this is an automated assistant calling on behalf of our sales team...",
			Status:      "inactive",
		},
		{
			Name:        "Follow-Up Specialist",
			Description: "Re-engages warm leads that requested a callback",
			Voice:       "echo",
			Script:      "Hi {{name}}, following up on our earlier conversation about {{company}}...",
			Status:      "inactive",
		},
		{
			Name:        "Appointment Setter",
			Description: "Books demo slots with qualified leads",
			Voice:       "nova",
			Script:      "Hi {{name}}, I'd love to get a demo on the calendar for {{company}}...",
			Status:      "inactive",
		},
	}
	if err := s.db.WithContext(ctx).Create(&defaults).Error; err != nil {
		return fmt.Errorf("failed to seed agents: %w", err)
	}
	return nil
}
