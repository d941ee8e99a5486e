package aiagents

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

func TestAgentCRUD(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil)
	ctx := context.Background()

	created, err := service.Create(ctx, models.AIAgentRequest{
		Name:        "Closer",
		Description: "Pushes hot leads over the line",
		Voice:       "onyx",
		Script:      "Hello {{name}}...",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "inactive", created.Status)

	updated, err := service.Update(ctx, created.ID, models.AIAgentRequest{
		Name:   "Closer",
		Script: "Hi {{name}}, quick question...",
		Status: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "active", updated.Status)
	assert.Equal(t, "Hi {{name}}, quick question...", updated.Script)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrAgentNotFound)

	t.Run("update unknown agent", func(t *testing.T) {
		_, err := service.Update(ctx, uuid.NewString(), models.AIAgentRequest{Name: "Ghost"})
		assert.ErrorIs(t, err, ErrAgentNotFound)
	})
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, service.Seed(ctx))

	agents, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 3)
	assert.Equal(t, "Cold Caller", agents[0].Name)

	// Seeding again is a no-op
	require.NoError(t, service.Seed(ctx))
	agents, err = service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 3)
}

func TestImproveScript_Disabled(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil)

	_, err := service.ImproveScript(context.Background(), "Hello", "book a demo")
	assert.ErrorIs(t, err, ErrAssistantDisabled)
}
