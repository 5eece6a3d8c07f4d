package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/config"
	"league-app-go/internal/domain/league"
	"league-app-go/pkg/logger"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	up, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	down, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, up)
	assert.Len(t, down, len(up))
}

func TestMigrateSQLite(t *testing.T) {
	gormDB, err := NewSQLite(config.DBConfig{SQLitePath: ":memory:"}, logger.Nop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}

	require.NoError(t, Migrate(gormDB, logger.Nop()))
	require.NoError(t, Migrate(gormDB, logger.Nop()))

	assert.True(t, gormDB.Migrator().HasTable(&league.Relationship{}))
	assert.True(t, gormDB.Migrator().HasIndex(&league.Relationship{}, "OpenPairKey"))
}

func TestOpenRejectsDocumentDriver(t *testing.T) {
	_, err := Open(config.DBConfig{Driver: config.DriverMongo}, logger.Nop())
	assert.Error(t, err)
}
