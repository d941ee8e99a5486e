package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/cache"
	"github.com/callforge/callforge/pkg/models"
	"github.com/callforge/callforge/pkg/phone"
)

// ErrLeadNotFound is returned when a lead doesn't exist or belongs to
// another operator
var ErrLeadNotFound = errors.New("lead not found")

// Service handles lead business logic. Every operation is scoped to
// the owning operator: user_id is stamped at creation and never
// reassigned.
type Service struct {
	db          *gorm.DB
	cache       *cache.Client
	phoneRegion string
}

// NewService creates a new lead service
func NewService(db *gorm.DB, cache *cache.Client, phoneRegion string) *Service {
	if phoneRegion == "" {
		phoneRegion = "US"
	}
	return &Service{
		db:          db,
		cache:       cache,
		phoneRegion: phoneRegion,
	}
}

// List returns the operator's leads, newest first, with optional
// status filter and name/email/company search
func (s *Service) List(ctx context.Context, userID string, req models.LeadListRequest) (*models.LeadListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	if req.Limit > 200 {
		req.Limit = 200
	}

	cacheKey := cache.LeadListKey(userID, req.Status, req.Search, req.Page, req.Limit)

	// Try cache first
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var response models.LeadListResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return &response, nil
			}
		}
	}

	query := s.db.WithContext(ctx).Model(&models.Lead{}).Where("user_id = ?", userID)

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR company LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	var rows []models.Lead
	if err := query.
		Order("created_at DESC").
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	response := &models.LeadListResponse{
		Data: rows,
		Pagination: models.PaginationInfo{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}

	// Cache the page
	if s.cache != nil {
		if body, err := json.Marshal(response); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(body), 5*time.Minute)
		}
	}

	return response, nil
}

// GetByID returns one lead owned by the operator
func (s *Service) GetByID(ctx context.Context, userID, leadID string) (*models.Lead, error) {
	var l models.Lead
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", leadID, userID).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &l, nil
}

// Create creates a lead from manual form entry
func (s *Service) Create(ctx context.Context, userID string, req models.CreateLeadRequest) (*models.Lead, error) {
	l := &models.Lead{
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 phone.NormalizeOrKeep(req.Phone, s.phoneRegion),
		Company:               req.Company,
		Status:                req.Status,
		Source:                req.Source,
		Priority:              req.Priority,
		LeadScore:             req.LeadScore,
		ConversionProbability: req.ConversionProbability,
		Notes:                 req.Notes,
		Tags:                  req.Tags,
		Timezone:              req.Timezone,
		EstimatedValue:        req.EstimatedValue,
		CampaignID:            req.CampaignID,
		UserID:                userID,
	}
	if l.Status == "" {
		l.Status = models.LeadStatusNew
	}
	if l.Source == "" {
		l.Source = "manual"
	}
	if l.Priority == 0 {
		l.Priority = 1
	}

	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.invalidateList(ctx, userID)
	return l, nil
}

// CreateBatch inserts candidate leads from an import in one call.
// The importer has already stamped user identity and defaults.
func (s *Service) CreateBatch(ctx context.Context, leads []models.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	for i := range leads {
		if leads[i].Phone != "" {
			leads[i].Phone = phone.NormalizeOrKeep(leads[i].Phone, s.phoneRegion)
		}
	}
	if err := s.db.WithContext(ctx).Create(&leads).Error; err != nil {
		return 0, fmt.Errorf("failed to insert leads: %w", err)
	}
	s.invalidateList(ctx, leads[0].UserID)
	return len(leads), nil
}

// Update patches lead fields from the edit form. Only supplied fields
// change; user_id is never part of the payload.
func (s *Service) Update(ctx context.Context, userID, leadID string, req models.UpdateLeadRequest) (*models.Lead, error) {
	if _, err := s.GetByID(ctx, userID, leadID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = phone.NormalizeOrKeep(*req.Phone, s.phoneRegion)
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.LeadScore != nil {
		updates["lead_score"] = *req.LeadScore
	}
	if req.ConversionProbability != nil {
		updates["conversion_probability"] = *req.ConversionProbability
	}
	if req.AssignedAgentID != nil {
		updates["assigned_agent_id"] = *req.AssignedAgentID
	}
	if req.NextFollowUpDate != nil {
		ts, err := time.Parse(time.RFC3339, *req.NextFollowUpDate)
		if err != nil {
			return nil, fmt.Errorf("invalid next_follow_up_date: %w", err)
		}
		updates["next_follow_up_date"] = ts
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Tags != nil {
		tags, _ := models.StringList(req.Tags).Value()
		updates["tags"] = tags
	}
	if req.EstimatedValue != nil {
		updates["estimated_value"] = *req.EstimatedValue
	}
	if req.CampaignID != nil {
		updates["campaign_id"] = *req.CampaignID
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ? AND user_id = ?", leadID, userID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.invalidateList(ctx, userID)
	return s.GetByID(ctx, userID, leadID)
}

// Delete removes a lead permanently. There is no soft delete.
func (s *Service) Delete(ctx context.Context, userID, leadID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", leadID, userID).
		Delete(&models.Lead{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}

	s.invalidateList(ctx, userID)
	return nil
}

// CountByCampaign returns lead totals for one campaign
func (s *Service) CountByCampaign(ctx context.Context, userID, campaignID string) (total, converted int64, err error) {
	base := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("user_id = ? AND campaign_id = ?", userID, campaignID)

	if err = base.Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count campaign leads: %w", err)
	}
	if err = base.Where("status = ?", models.LeadStatusConverted).Count(&converted).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count converted leads: %w", err)
	}
	return total, converted, nil
}

// InvalidateList drops every cached list page for the operator.
// Exported for the services that mutate leads outside this package.
func (s *Service) InvalidateList(ctx context.Context, userID string) {
	s.invalidateList(ctx, userID)
}

func (s *Service) invalidateList(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePattern(ctx, cache.LeadListPattern(userID))
}
