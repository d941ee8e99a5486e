package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/callforge/callforge/pkg/logger"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	scanner *FollowUpScanner
	logger  logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, sender ReminderSender, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Default()
	}
	return &CronManager{
		cron:    cron.New(),
		scanner: NewFollowUpScanner(db, sender, log),
		logger:  log,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Info("setting up cron jobs")

	// Every morning at 8 AM: surface due follow-ups
	_, err := cm.cron.AddFunc("0 8 * * *", func() {
		cm.logger.Info("running follow-up reminder scan")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := cm.scanner.Run(ctx); err != nil {
			cm.logger.Error("follow-up scan failed", "error", err)
			return
		}
		cm.logger.Info("follow-up reminder scan completed")
	})
	if err != nil {
		return err
	}

	cm.logger.Info("cron jobs configured")
	return nil
}

// Start begins running scheduled jobs
func (cm *CronManager) Start() {
	cm.cron.Start()
	cm.logger.Info("cron scheduler started")
}

// Stop gracefully stops the scheduler
func (cm *CronManager) Stop() {
	ctx := cm.cron.Stop()
	<-ctx.Done()
	cm.logger.Info("cron scheduler stopped")
}
