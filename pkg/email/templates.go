package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/models"
)

var ErrTemplateNotFound = errors.New("email template not found")

// TemplateService manages an operator's reusable email templates
type TemplateService struct {
	db *gorm.DB
}

// NewTemplateService creates a new template service
func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// List returns the operator's templates, newest first
func (s *TemplateService) List(ctx context.Context, userID string) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// GetByID returns one template owned by the operator
func (s *TemplateService) GetByID(ctx context.Context, userID, templateID string) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", templateID, userID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &t, nil
}

// Create adds a new template
func (s *TemplateService) Create(ctx context.Context, userID string, req models.EmailTemplateRequest) (*models.EmailTemplate, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	t := &models.EmailTemplate{
		UserID:       userID,
		Name:         req.Name,
		Subject:      req.Subject,
		Content:      req.Content,
		TemplateType: req.TemplateType,
		IsActive:     active,
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return t, nil
}

// Update patches a template
func (s *TemplateService) Update(ctx context.Context, userID, templateID string, req models.EmailTemplateRequest) (*models.EmailTemplate, error) {
	updates := map[string]interface{}{
		"name":          req.Name,
		"subject":       req.Subject,
		"content":       req.Content,
		"template_type": req.TemplateType,
		"updated_at":    time.Now().UTC(),
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	res := s.db.WithContext(ctx).Model(&models.EmailTemplate{}).
		Where("id = ? AND user_id = ?", templateID, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTemplateNotFound
	}
	return s.GetByID(ctx, userID, templateID)
}

// Delete removes a template
func (s *TemplateService) Delete(ctx context.Context, userID, templateID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", templateID, userID).
		Delete(&models.EmailTemplate{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
