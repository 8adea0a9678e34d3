package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin-dashboard-api/internal/config"
	"github.com/admin-dashboard-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the hosted Postgres instance named by cfg.DatabaseURL.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), Options())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Options is the gorm configuration shared by every dialect. TranslateError
// turns unique violations into gorm.ErrDuplicatedKey.
func Options() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Role{}, &domain.User{}, &domain.PasswordResetOTP{}, &domain.Coupon{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database schema up to date")
	return nil
}

// Health pings the underlying connection pool.
type Health struct {
	db *gorm.DB
}

func NewHealth(db *gorm.DB) *Health { return &Health{db: db} }

func (h *Health) Ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
