package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return db
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, logLevel(dto.Config{Env: dto.EnvDevelopment}))
	assert.Equal(t, logger.Info, logLevel(dto.Config{Env: dto.EnvProduction, DatabaseLogging: true}))
	assert.Equal(t, logger.Warn, logLevel(dto.Config{Env: dto.EnvProduction}))
}

func TestMigrate_RunsEmbeddedMigrations(t *testing.T) {
	db := openSQLite(t)

	var gotDir string
	orig := gooseUp
	gooseUp = func(ctx context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseUp = orig })

	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestMigrate_WrapsFailure(t *testing.T) {
	db := openSQLite(t)

	orig := gooseUp
	gooseUp = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("relation already exists")
	}
	t.Cleanup(func() { gooseUp = orig })

	err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.ErrorIs(t, err, dto.ErrUpstream)
	assert.Contains(t, err.Error(), "relation already exists")
}

func TestClose(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Close(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}
