package infra

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"subhub/internal/config"
	"subhub/internal/logger"
	"subhub/internal/models/db_models"
)

// activeSubscriptionIndex backs the one-active-subscription-per-account rule at
// the storage layer. Stale active rows are flipped to expired before a new
// subscription is inserted, so the index never sees two.
const activeSubscriptionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_subscription_per_account
ON subscriptions (account_id) WHERE status = 'active' AND deleted_at IS NULL`

func InitPostgresql(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		logLevel = gormlogger.Info
	}

	// lib/pq serves as the database/sql driver underneath gorm
	connectionPool, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        cfg.PostgresURL,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := connectionPool.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Infow("connected to postgres")
	return connectionPool, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&db_models.Account{},
		&db_models.Plan{},
		&db_models.Subscription{},
		&db_models.Payment{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeSubscriptionIndex).Error; err != nil {
		return fmt.Errorf("create active subscription index: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, log *logger.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Errorw("error getting database instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Errorw("error closing database connection", "error", err)
	} else {
		log.Infow("postgres connection closed")
	}
}
