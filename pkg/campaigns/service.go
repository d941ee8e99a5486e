package campaigns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/models"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidDateRange = errors.New("end_date must be after start_date")
)

// Service manages outreach campaigns and the derived lead counts shown
// on the campaign board
type Service struct {
	db *gorm.DB
}

// NewService creates a new campaign service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the operator's campaigns with lead counts, newest first
func (s *Service) List(ctx context.Context, userID string) ([]models.CampaignResponse, error) {
	var campaigns []models.Campaign
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	responses := make([]models.CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		resp, err := s.withLeadCounts(ctx, c)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// GetByID returns one campaign owned by the operator
func (s *Service) GetByID(ctx context.Context, userID, campaignID string) (*models.CampaignResponse, error) {
	var c models.Campaign
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", campaignID, userID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return s.withLeadCounts(ctx, c)
}

// Create validates the date range and creates a campaign
func (s *Service) Create(ctx context.Context, userID string, req models.CampaignRequest) (*models.Campaign, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.CampaignStatusDraft
	}

	c := &models.Campaign{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Budget:      req.Budget,
		Status:      status,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return c, nil
}

// Update patches an existing campaign
func (s *Service) Update(ctx context.Context, userID, campaignID string, req models.CampaignRequest) (*models.Campaign, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"start_date":  start,
		"end_date":    end,
		"budget":      req.Budget,
		"updated_at":  time.Now().UTC(),
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	res := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND user_id = ?", campaignID, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCampaignNotFound
	}

	var c models.Campaign
	if err := s.db.WithContext(ctx).First(&c, "id = ?", campaignID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload campaign: %w", err)
	}
	return &c, nil
}

// Delete removes a campaign. Leads keep their campaign_id cleared.
func (s *Service) Delete(ctx context.Context, userID, campaignID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", campaignID, userID).
			Delete(&models.Campaign{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete campaign: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrCampaignNotFound
		}
		if err := tx.Model(&models.Lead{}).
			Where("campaign_id = ?", campaignID).
			Update("campaign_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach leads: %w", err)
		}
		return nil
	})
}

func (s *Service) withLeadCounts(ctx context.Context, c models.Campaign) (*models.CampaignResponse, error) {
	var total, converted int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("campaign_id = ?", c.ID).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count campaign leads: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("campaign_id = ? AND status = ?", c.ID, models.LeadStatusConverted).
		Count(&converted).Error; err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}
	return &models.CampaignResponse{
		Campaign:       c,
		TotalLeads:     total,
		ConvertedLeads: converted,
	}, nil
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := parseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD date
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
