package bulkactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/cache"
	"github.com/callforge/callforge/pkg/models"
)

// Bulk action names accepted from the selection toolbar
const (
	ActionUpdateStatus = "update_status"
	ActionAssignAgent  = "assign_agent"
	ActionAddNotes     = "add_notes"
	ActionDelete       = "delete"
)

var (
	ErrUnknownAction = errors.New("unknown bulk action")
	ErrNoLeads       = errors.New("no leads selected")
	// ErrMissingParameter is returned when the action needs a value
	// the request didn't carry (status, agent, notes)
	ErrMissingParameter = errors.New("missing required parameter for bulk action")
)

// Service applies one action to a batch of selected leads. Every
// action runs as a single statement filtered by the operator's
// user_id, so records owned by someone else are silently untouched.
type Service struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewService creates a new bulk action service
func NewService(db *gorm.DB, cache *cache.Client) *Service {
	return &Service{db: db, cache: cache}
}

// Apply executes the requested action over the selected leads and
// reports how many rows it touched. A count lower than the selection
// size means some ids were stale or foreign; that is not an error.
func (s *Service) Apply(ctx context.Context, userID string, req models.BulkActionRequest) (*models.BulkActionResponse, error) {
	if len(req.LeadIDs) == 0 {
		return nil, ErrNoLeads
	}

	scope := s.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id IN ? AND user_id = ?", req.LeadIDs, userID)

	var affected int64
	switch req.Action {
	case ActionUpdateStatus:
		if req.Status == "" || !models.ValidLeadStatus(req.Status) {
			return nil, fmt.Errorf("%w: status", ErrMissingParameter)
		}
		updates := map[string]interface{}{
			"status":     req.Status,
			"updated_at": time.Now().UTC(),
		}
		if req.AddNotes && req.Notes != "" {
			updates["notes"] = req.Notes
		}
		res := scope.Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("bulk status update failed: %w", res.Error)
		}
		affected = res.RowsAffected

	case ActionAssignAgent:
		if req.AssignedAgentID == "" {
			return nil, fmt.Errorf("%w: assigned_agent_id", ErrMissingParameter)
		}
		updates := map[string]interface{}{
			"assigned_agent_id": req.AssignedAgentID,
			"updated_at":        time.Now().UTC(),
		}
		if req.AddNotes && req.Notes != "" {
			updates["notes"] = req.Notes
		}
		res := scope.Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("bulk agent assignment failed: %w", res.Error)
		}
		affected = res.RowsAffected

	case ActionAddNotes:
		if req.Notes == "" {
			return nil, fmt.Errorf("%w: notes", ErrMissingParameter)
		}
		// Overwrites the notes field on every selected lead
		res := scope.Updates(map[string]interface{}{
			"notes":      req.Notes,
			"updated_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return nil, fmt.Errorf("bulk notes update failed: %w", res.Error)
		}
		affected = res.RowsAffected

	case ActionDelete:
		res := s.db.WithContext(ctx).
			Where("id IN ? AND user_id = ?", req.LeadIDs, userID).
			Delete(&models.Lead{})
		if res.Error != nil {
			return nil, fmt.Errorf("bulk delete failed: %w", res.Error)
		}
		affected = res.RowsAffected

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, req.Action)
	}

	if s.cache != nil {
		_ = s.cache.DeletePattern(ctx, cache.LeadListPattern(userID))
	}

	return &models.BulkActionResponse{Action: req.Action, Affected: affected}, nil
}
