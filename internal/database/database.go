// Package database owns the lifetime of the gorm handle: it is opened once on
// startup, passed down explicitly and closed on shutdown.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/krakosik/userhub/internal/database/migrations"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connMaxLifetime = 30 * time.Minute
	connectTimeout  = 10 * time.Second
	slowQuery       = 200 * time.Millisecond
)

func Open(cfg dto.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         NewLogger(cfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", dto.ErrUpstream, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}
	sqlDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping database: %v", dto.ErrUpstream, err)
	}

	logrus.Info("Connected to database")
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("%w: close database: %v", dto.ErrInternalFailure, err)
	}
	logrus.Info("Disconnected from database")
	return nil
}

// gooseUp is swapped in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(logrus.StandardLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	if err := gooseUp(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("%w: migrate: %v", dto.ErrUpstream, err)
	}
	return nil
}

func NewLogger(cfg dto.Config) logger.Interface {
	return logger.New(logrus.StandardLogger(), logger.Config{
		SlowThreshold:             slowQuery,
		LogLevel:                  logLevel(cfg),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func logLevel(cfg dto.Config) logger.LogLevel {
	if cfg.DatabaseLogging || cfg.IsDevelopment() {
		return logger.Info
	}
	return logger.Warn
}
