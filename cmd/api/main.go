package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/callforge/callforge/config"
	"github.com/callforge/callforge/pkg/aiagents"
	"github.com/callforge/callforge/pkg/api/handlers"
	custommw "github.com/callforge/callforge/pkg/api/middleware"
	"github.com/callforge/callforge/pkg/auth"
	"github.com/callforge/callforge/pkg/bulkactions"
	"github.com/callforge/callforge/pkg/cache"
	"github.com/callforge/callforge/pkg/campaigns"
	"github.com/callforge/callforge/pkg/database"
	"github.com/callforge/callforge/pkg/email"
	"github.com/callforge/callforge/pkg/importer"
	"github.com/callforge/callforge/pkg/interactions"
	"github.com/callforge/callforge/pkg/jobs"
	"github.com/callforge/callforge/pkg/leads"
	"github.com/callforge/callforge/pkg/logger"
	"github.com/callforge/callforge/pkg/metrics"
	custommiddleware "github.com/callforge/callforge/pkg/middleware"
	"github.com/callforge/callforge/pkg/session"
	"github.com/callforge/callforge/pkg/storage"
	"github.com/callforge/callforge/pkg/telephony"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2) // login brute-force guard

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "CallForge API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize JWT blacklist
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)

	// Process-wide login state machine with explicit accessors
	sessionManager := session.NewManager()

	// Initialize email delivery
	emailService := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridAPIKey)

	// Import file archiver (S3, optional)
	var archiver storage.Archiver
	if cfg.ArchiveEnabled && cfg.ArchiveS3Bucket != "" {
		s3Archiver, err := storage.NewS3Archiver(storage.Config{
			AWSAccessKeyID:     cfg.AWSAccessKeyID,
			AWSSecretAccessKey: cfg.AWSSecretAccessKey,
			AWSRegion:          cfg.AWSRegion,
			S3Bucket:           cfg.ArchiveS3Bucket,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize S3 archiver: %v", err)
			archiver = storage.NewNoopArchiver()
		} else {
			log.Printf("✅ Import archive enabled (S3: %s)", cfg.ArchiveS3Bucket)
			archiver = s3Archiver
		}
	} else {
		archiver = storage.NewNoopArchiver()
		log.Printf("ℹ️  Import archive disabled")
	}

	// AI script assistant (optional)
	var scriptAssistant aiagents.ScriptAssistant
	if cfg.OpenAIAPIKey != "" {
		scriptAssistant = aiagents.NewOpenAIAssistant(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Printf("✅ Script assistant enabled (model: %s)", cfg.OpenAIModel)
	} else {
		scriptAssistant = aiagents.NewDisabledAssistant()
		log.Printf("ℹ️  Script assistant disabled (no OpenAI API key)")
	}

	// Telephony gateway. The noop gateway acknowledges click-to-call
	// requests until a real provider is wired in.
	gateway := telephony.NewNoopGateway()

	// Initialize services
	leadService := leads.NewService(db.DB, redisClient, cfg.PhoneDefaultRegion)
	importService := importer.NewService()
	bulkService := bulkactions.NewService(db.DB, redisClient)
	interactionService := interactions.NewService(db.DB, redisClient)
	campaignService := campaigns.NewService(db.DB)
	agentService := aiagents.NewService(db.DB, scriptAssistant)
	templateService := email.NewTemplateService(db.DB)

	// Seed the default agents on first boot
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := agentService.Seed(ctx); err != nil {
			log.Printf("⚠️  Failed to seed default agents: %v", err)
		}
		cancel()
	}

	// Initialize cron manager for follow-up scanning. Reminders go out
	// through the same delivery service the email handler uses.
	cronManager := jobs.NewCronManager(db.DB, emailService, logger.New(cfg.LogLevel, cfg.LogFormat))
	if cfg.FollowUpJobEnabled {
		if err := cronManager.SetupJobs(); err != nil {
			log.Fatalf("❌ Failed to setup cron jobs: %v", err)
		}
		cronManager.Start()
		log.Printf("✅ Cron jobs started successfully")
	} else {
		log.Printf("ℹ️  Follow-up job disabled")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db.DB, cfg.JWTSecret, cfg.JWTExpirationHours, tokenBlacklist, sessionManager, prometheusMetrics)
	leadHandler := handlers.NewLeadHandler(leadService)
	bulkHandler := handlers.NewBulkHandler(bulkService, prometheusMetrics)
	importHandler := handlers.NewImportHandler(importService, leadService, archiver, prometheusMetrics)
	callLogHandler := handlers.NewCallLogHandler(interactionService, leadService, gateway, prometheusMetrics)
	emailHandler := handlers.NewEmailHandler(emailService, templateService, interactionService, leadService, prometheusMetrics)
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	agentHandler := handlers.NewAIAgentHandler(agentService)

	v1 := e.Group("/api/v1")

	v1.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"version":     "0.1.0",
			"environment": cfg.APIEnvironment,
		})
	})

	requireJWT := custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, db.DB)

	// Authentication routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/logout", authHandler.Logout, requireJWT)
		authRoutes.GET("/me", authHandler.Me, requireJWT)
		// Account settings are an Admin-only section
		authRoutes.PATCH("/profile", authHandler.UpdateProfile, requireJWT, custommiddleware.RequireAdmin())
	}

	// Template download accepts the token as a query parameter so
	// browsers can open it as a plain link.
	v1.GET("/leads/import/template", importHandler.DownloadTemplate,
		custommw.JWTFromQueryOrHeader(cfg.JWTSecret, tokenBlacklist, db.DB))

	// Protected routes (require JWT with blacklist validation)
	protected := v1.Group("")
	protected.Use(requireJWT)
	{
		leadsGroup := protected.Group("/leads")
		{
			leadsGroup.GET("", leadHandler.List)
			leadsGroup.POST("", leadHandler.Create)
			leadsGroup.GET("/:id", leadHandler.GetByID)
			leadsGroup.PUT("/:id", leadHandler.Update)
			leadsGroup.DELETE("/:id", leadHandler.Delete)

			leadsGroup.POST("/bulk-action", bulkHandler.Apply)
			leadsGroup.POST("/import", importHandler.Upload)

			leadsGroup.GET("/:id/calls", callLogHandler.GetLeadCallLogs)
			leadsGroup.POST("/:id/call", callLogHandler.InitiateCall)
		}

		callsGroup := protected.Group("/calls")
		{
			callsGroup.POST("", callLogHandler.LogCall)
			callsGroup.GET("", callLogHandler.GetCallLogs)
			callsGroup.GET("/stats", callLogHandler.GetCallStats)
		}

		emailsGroup := protected.Group("/emails")
		{
			emailsGroup.POST("/send", emailHandler.Send)
		}

		templatesGroup := protected.Group("/email-templates")
		{
			templatesGroup.GET("", emailHandler.ListTemplates)
			templatesGroup.POST("", emailHandler.CreateTemplate)
			templatesGroup.PUT("/:id", emailHandler.UpdateTemplate)
			templatesGroup.DELETE("/:id", emailHandler.DeleteTemplate)
		}

		// Campaigns are an Admin-only section
		campaignsGroup := protected.Group("/campaigns")
		campaignsGroup.Use(custommiddleware.RequireAdmin())
		{
			campaignsGroup.GET("", campaignHandler.List)
			campaignsGroup.POST("", campaignHandler.Create)
			campaignsGroup.GET("/:id", campaignHandler.GetByID)
			campaignsGroup.PUT("/:id", campaignHandler.Update)
			campaignsGroup.DELETE("/:id", campaignHandler.Delete)
		}

		// AI agents are an Admin-only section
		agentsGroup := protected.Group("/agents")
		agentsGroup.Use(custommiddleware.RequireAdmin())
		{
			agentsGroup.GET("", agentHandler.List)
			agentsGroup.GET("/:id", agentHandler.GetByID)
			agentsGroup.POST("", agentHandler.Create)
			agentsGroup.PUT("/:id", agentHandler.Update)
			agentsGroup.DELETE("/:id", agentHandler.Delete)
			agentsGroup.POST("/:id/improve-script", agentHandler.ImproveScript)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 CallForge API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
