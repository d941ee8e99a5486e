package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/callforge/callforge/pkg/models"
)

// Client holds the database client
type Client struct {
	DB *gorm.DB
	db *sql.DB // Underlying database for pool stats
}

// PoolConfig holds connection pool configuration
type PoolConfig struct {
	MaxOpenConns    int           // Maximum number of open connections
	MaxIdleConns    int           // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum amount of time a connection may be reused
	ConnMaxIdleTime time.Duration // Maximum amount of time a connection may be idle
}

// DefaultPoolConfig returns sensible defaults for connection pooling
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// entities is every table the service owns; AutoMigrate keeps the
// schema in step on startup
func entities() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Lead{},
		&models.CallLog{},
		&models.EmailTemplate{},
		&models.Campaign{},
		&models.AIAgent{},
	}
}

// NewClient creates a new database client with default pooling
func NewClient(databaseURL string) (*Client, error) {
	return NewClientWithPool(databaseURL, DefaultPoolConfig())
}

// NewClientWithPool creates a new database client with custom pool configuration
func NewClientWithPool(databaseURL string, poolCfg PoolConfig) (*Client, error) {
	gdb, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	db, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed getting underlying sql.DB: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(poolCfg.MaxOpenConns)
	db.SetMaxIdleConns(poolCfg.MaxIdleConns)
	db.SetConnMaxLifetime(poolCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(poolCfg.ConnMaxIdleTime)

	log.Printf("✅ Database connection pool configured (max_open: %d, max_idle: %d)",
		poolCfg.MaxOpenConns, poolCfg.MaxIdleConns)

	// Run migrations
	if err := gdb.AutoMigrate(entities()...); err != nil {
		return nil, fmt.Errorf("failed migrating schema: %w", err)
	}

	log.Println("✅ Database connected and migrations applied")

	return &Client{
		DB: gdb,
		db: db,
	}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (c *Client) Stats() sql.DBStats {
	return c.db.Stats()
}

// Migrate applies the schema to an already-open gorm.DB. Used by the
// test helpers that run against in-memory sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entities()...)
}
