package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/cache"
	"github.com/callforge/callforge/pkg/models"
)

var ErrLeadNotFound = errors.New("lead not found")

// Score deltas applied per call outcome. The lead score accumulates
// across interactions and stays clamped to [0, 100].
var outcomeScoreDelta = map[string]int{
	models.OutcomeInterested:        10,
	models.OutcomeNotInterested:     -5,
	models.OutcomeCallbackRequested: 5,
}

// Service records call and email interactions against leads. Each
// write appends to the interaction history and rolls the derived
// fields (last contact, interaction count, lead score) forward on the
// lead itself.
type Service struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewService creates a new interaction logger
func NewService(db *gorm.DB, cache *cache.Client) *Service {
	return &Service{db: db, cache: cache}
}

// LogCall records one call attempt. It creates an append-only call
// log row and updates the lead's derived fields in one transaction.
func (s *Service) LogCall(ctx context.Context, userID string, req models.LogCallRequest) (*models.CallLog, error) {
	now := time.Now().UTC()

	var entry *models.CallLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		err := tx.Where("id = ? AND user_id = ?", req.LeadID, userID).First(&lead).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load lead: %w", err)
		}

		entry = &models.CallLog{
			LeadID:     req.LeadID,
			AgentID:    userID,
			UserID:     userID,
			CallType:   "outbound",
			CallStatus: req.CallStatus,
			Duration:   req.DurationMinutes * 60,
			Notes:      req.Notes,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create call log: %w", err)
		}

		updates := map[string]interface{}{
			"last_contact_date":     now,
			"last_interaction_type": "call",
			"interaction_count":     gorm.Expr("interaction_count + 1"),
			"updated_at":            now,
		}
		if req.Outcome != "" {
			updates["call_outcome"] = req.Outcome
		}
		if delta, ok := outcomeScoreDelta[req.Outcome]; ok {
			updates["lead_score"] = clampScore(lead.LeadScore + delta)
		}
		if req.FollowUpDate != "" {
			followUp, err := time.Parse(time.RFC3339, req.FollowUpDate)
			if err != nil {
				return fmt.Errorf("invalid follow_up_date: %w", err)
			}
			updates["next_follow_up_date"] = followUp
		}

		if err := tx.Model(&models.Lead{}).
			Where("id = ?", req.LeadID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.DeletePattern(ctx, cache.LeadListPattern(userID))
	}

	return entry, nil
}

// LogEmail appends an email event to every selected lead the operator
// owns and returns how many leads were touched. Foreign or stale ids
// are skipped without error.
func (s *Service) LogEmail(ctx context.Context, userID string, req models.LogEmailRequest, templateName string) (int, error) {
	now := time.Now().UTC()
	touched := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var leads []models.Lead
		if err := tx.Where("id IN ? AND user_id = ?", req.LeadIDs, userID).
			Find(&leads).Error; err != nil {
			return fmt.Errorf("failed to load leads: %w", err)
		}

		for i := range leads {
			lead := &leads[i]
			lead.EmailHistory = append(lead.EmailHistory, models.EmailEvent{
				Subject:      req.Subject,
				Content:      req.Content,
				SentAt:       now,
				TemplateUsed: templateName,
			})
			if err := tx.Model(&models.Lead{}).
				Where("id = ?", lead.ID).
				Updates(map[string]interface{}{
					"email_history":         lead.EmailHistory,
					"last_contact_date":     now,
					"last_interaction_type": "email",
					"interaction_count":     gorm.Expr("interaction_count + 1"),
					"updated_at":            now,
				}).Error; err != nil {
				return fmt.Errorf("failed to update lead: %w", err)
			}
			touched++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.DeletePattern(ctx, cache.LeadListPattern(userID))
	}

	return touched, nil
}

// GetCallLogs returns the operator's call history, newest first
func (s *Service) GetCallLogs(ctx context.Context, userID string, page, limit int) ([]models.CallLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Model(&models.CallLog{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count call logs: %w", err)
	}

	var logs []models.CallLog
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list call logs: %w", err)
	}

	return logs, total, nil
}

// GetLeadCallLogs returns every call logged against one lead the
// operator owns
func (s *Service) GetLeadCallLogs(ctx context.Context, userID, leadID string) ([]models.CallLog, error) {
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("id = ? AND user_id = ?", leadID, userID).
		Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("failed to check lead: %w", err)
	}
	if exists == 0 {
		return nil, ErrLeadNotFound
	}

	var logs []models.CallLog
	if err := s.db.WithContext(ctx).
		Where("lead_id = ? AND user_id = ?", leadID, userID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list lead call logs: %w", err)
	}
	return logs, nil
}

// GetCallStats aggregates the operator's call activity
func (s *Service) GetCallStats(ctx context.Context, userID string) (*models.CallStats, error) {
	var logs []models.CallLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load call logs: %w", err)
	}

	stats := &models.CallStats{TotalCalls: len(logs)}
	for _, l := range logs {
		stats.TotalDuration += l.Duration
		switch l.CallStatus {
		case models.CallStatusAnswered:
			stats.CompletedCalls++
		case models.CallStatusFailed:
			stats.FailedCalls++
		}
	}
	if stats.TotalCalls > 0 {
		stats.AverageDuration = float64(stats.TotalDuration) / float64(stats.TotalCalls)
		stats.SuccessRate = float64(stats.CompletedCalls) / float64(stats.TotalCalls) * 100
	}
	return stats, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
