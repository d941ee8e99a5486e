package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/logger"
	"github.com/callforge/callforge/pkg/models"
)

// ReminderSender delivers follow-up reminder emails to operators
type ReminderSender interface {
	Send(toEmail, toName, subject, body string) error
}

// FollowUpScanner finds leads whose follow-up date has come due,
// flags them at the top of the queue and emails the owning operator
type FollowUpScanner struct {
	db     *gorm.DB
	sender ReminderSender
	logger logger.Logger
}

// NewFollowUpScanner creates a new follow-up scanner. A nil sender
// disables reminder emails; the scan still flags due leads.
func NewFollowUpScanner(db *gorm.DB, sender ReminderSender, log logger.Logger) *FollowUpScanner {
	if log == nil {
		log = logger.Default()
	}
	return &FollowUpScanner{db: db, sender: sender, logger: log}
}

// DueLeads returns leads whose next_follow_up_date is in the past and
// that haven't already converted or been lost
func (s *FollowUpScanner) DueLeads(ctx context.Context, asOf time.Time) ([]models.Lead, error) {
	var leads []models.Lead
	err := s.db.WithContext(ctx).
		Where("next_follow_up_date IS NOT NULL AND next_follow_up_date <= ?", asOf).
		Where("status NOT IN ?", []string{models.LeadStatusConverted, models.LeadStatusLost}).
		Order("next_follow_up_date ASC").
		Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find due follow-ups: %w", err)
	}
	return leads, nil
}

// Run scans for due follow-ups, bumps each lead to top priority and
// sends one reminder email per owning operator. The follow-up date is
// left in place until the operator logs the next interaction.
func (s *FollowUpScanner) Run(ctx context.Context) error {
	due, err := s.DueLeads(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(due) == 0 {
		s.logger.Info("no follow-ups due")
		return nil
	}

	s.logger.Info("follow-ups due", "count", len(due))

	byOwner := make(map[string][]models.Lead)
	for _, lead := range due {
		byOwner[lead.UserID] = append(byOwner[lead.UserID], lead)

		if lead.Priority >= 5 {
			continue
		}
		if err := s.db.WithContext(ctx).Model(&models.Lead{}).
			Where("id = ?", lead.ID).
			Update("priority", 5).Error; err != nil {
			s.logger.Error("failed to flag lead", "lead_id", lead.ID, "error", err)
		}
	}

	if s.sender == nil {
		return nil
	}

	for ownerID, leads := range byOwner {
		var owner models.User
		if err := s.db.WithContext(ctx).First(&owner, "id = ?", ownerID).Error; err != nil {
			s.logger.Error("failed to load lead owner", "user_id", ownerID, "error", err)
			continue
		}
		if err := s.sender.Send(owner.Email, owner.FullName, reminderSubject(leads), reminderBody(leads)); err != nil {
			s.logger.Error("failed to send follow-up reminder", "user_id", ownerID, "error", err)
		}
	}
	return nil
}

func reminderSubject(leads []models.Lead) string {
	if len(leads) == 1 {
		return fmt.Sprintf("Follow-up due: %s", leads[0].Name)
	}
	return fmt.Sprintf("%d follow-ups due today", len(leads))
}

func reminderBody(leads []models.Lead) string {
	var b strings.Builder
	b.WriteString("The following leads are due for a follow-up:\n\n")
	for _, lead := range leads {
		line := fmt.Sprintf("- %s", lead.Name)
		if lead.Company != "" {
			line += fmt.Sprintf(" (%s)", lead.Company)
		}
		if lead.NextFollowUpDate != nil {
			line += fmt.Sprintf(" due %s", lead.NextFollowUpDate.Format("2006-01-02"))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
