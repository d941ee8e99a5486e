package email

import (
	"context"
	"testing"

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

const testUserID = "bb60a0cf-4d23-41e7-8e0a-3cf7c8d9e0f1"

func TestNewService_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "CallForge", "")
	assert.False(t, svc.useSendGrid)
	assert.Equal(t, "from@example.com", svc.fromEmail)
	assert.Equal(t, "CallForge", svc.fromName)
}

func TestNewService_SendGridMode(t *testing.T) {
	svc := NewService("from@example.com", "CallForge", "SG.test-key")
	assert.True(t, svc.useSendGrid)
	assert.Equal(t, "SG.test-key", svc.sendGridKey)
}

func TestRenderPlaceholders(t *testing.T) {
	lead := &models.Lead{Name: "Ada", Company: "Analytical Engines"}

	out := RenderPlaceholders("Hi {{name}}, greetings from us to {{company}}!", lead)
	assert.Equal(t, "Hi Ada, greetings from us to Analytical Engines!", out)

	t.Run("missing placeholders pass through", func(t *testing.T) {
		assert.Equal(t, "No placeholders here", RenderPlaceholders("No placeholders here", lead))
	})

	t.Run("repeated placeholders", func(t *testing.T) {
		assert.Equal(t, "Ada Ada", RenderPlaceholders("{{name}} {{name}}", lead))
	})
}

func TestSendToLead_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "CallForge", "")

	err := svc.SendToLead(&models.Lead{
		ID:    uuid.NewString(),
		Name:  "Grace",
		Email: "grace@example.com",
	}, "Hello {{name}}", "Body")
	assert.NoError(t, err, "Console mode should not error")
}

func TestSendToLead_NoEmailAddress(t *testing.T) {
	svc := NewService("from@example.com", "CallForge", "")

	err := svc.SendToLead(&models.Lead{ID: uuid.NewString(), Name: "Silent"}, "Hi", "Body")
	assert.Error(t, err)
}

func TestTemplateCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTemplateService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, testUserID, models.EmailTemplateRequest{
		Name:    "Intro",
		Subject: "Hello {{name}}",
		Content: "We help companies like {{company}}.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	inactive := false
	updated, err := svc.Update(ctx, testUserID, created.ID, models.EmailTemplateRequest{
		Name:     "Intro v2",
		Subject:  "Hi {{name}}",
		Content:  "Short pitch.",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Intro v2", updated.Name)
	assert.False(t, updated.IsActive)

	list, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	t.Run("owner scoping", func(t *testing.T) {
		_, err := svc.GetByID(ctx, uuid.NewString(), created.ID)
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	require.NoError(t, svc.Delete(ctx, testUserID, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, testUserID, created.ID), ErrTemplateNotFound)
}
