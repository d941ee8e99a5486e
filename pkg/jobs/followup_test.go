package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/callforge/callforge/pkg/database"
	"github.com/callforge/callforge/pkg/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type capturedReminder struct {
	ToEmail string
	ToName  string
	Subject string
	Body    string
}

type fakeSender struct {
	sent []capturedReminder
}

func (f *fakeSender) Send(toEmail, toName, subject, body string) error {
	f.sent = append(f.sent, capturedReminder{toEmail, toName, subject, body})
	return nil
}

func seedFollowUpLead(t *testing.T, db *gorm.DB, userID, status string, due *time.Time) *models.Lead {
	lead := &models.Lead{
		ID:               uuid.NewString(),
		Name:             "Reminder Target",
		Status:           status,
		Priority:         2,
		UserID:           userID,
		NextFollowUpDate: due,
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

func TestDueLeads(t *testing.T) {
	db := setupTestDB(t)
	scanner := NewFollowUpScanner(db, nil, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	overdue := seedFollowUpLead(t, db, uuid.NewString(), models.LeadStatusWarm, &past)
	seedFollowUpLead(t, db, uuid.NewString(), models.LeadStatusWarm, &future)
	seedFollowUpLead(t, db, uuid.NewString(), models.LeadStatusConverted, &past)
	seedFollowUpLead(t, db, uuid.NewString(), models.LeadStatusNew, nil)

	due, err := scanner.DueLeads(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)
}

func TestRun_BumpsPriority(t *testing.T) {
	db := setupTestDB(t)
	scanner := NewFollowUpScanner(db, nil, nil)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	lead := seedFollowUpLead(t, db, uuid.NewString(), models.LeadStatusHot, &past)

	require.NoError(t, scanner.Run(ctx))

	var updated models.Lead
	require.NoError(t, db.First(&updated, "id = ?", lead.ID).Error)
	assert.Equal(t, 5, updated.Priority)
	// Follow-up date stays until the next interaction clears it
	require.NotNil(t, updated.NextFollowUpDate)
}

func TestRun_EmailsOwnerOncePerBatch(t *testing.T) {
	db := setupTestDB(t)

	owner := &models.User{
		ID:           uuid.NewString(),
		Email:        "operator@example.com",
		PasswordHash: "x",
		FullName:     "Morgan",
		Role:         models.RoleLowAdmin,
	}
	require.NoError(t, db.Create(owner).Error)

	past := time.Now().UTC().Add(-time.Hour)
	seedFollowUpLead(t, db, owner.ID, models.LeadStatusWarm, &past)
	seedFollowUpLead(t, db, owner.ID, models.LeadStatusHot, &past)

	sender := &fakeSender{}
	scanner := NewFollowUpScanner(db, sender, nil)
	require.NoError(t, scanner.Run(context.Background()))

	require.Len(t, sender.sent, 1)
	reminder := sender.sent[0]
	assert.Equal(t, "operator@example.com", reminder.ToEmail)
	assert.Equal(t, "Morgan", reminder.ToName)
	assert.Equal(t, "2 follow-ups due today", reminder.Subject)
	assert.Contains(t, reminder.Body, "Reminder Target")
}
