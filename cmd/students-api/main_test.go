package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage/memory"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
)

func TestNewStorageDrivers(t *testing.T) {
	s, closeStore, err := newStorage(&config.Config{Storage: config.Storage{Driver: config.DriverMemory}})
	require.NoError(t, err)
	assert.IsType(t, &memory.Memory{}, s)
	closeStore()

	s, closeStore, err = newStorage(&config.Config{Storage: config.Storage{Driver: config.DriverSQLite, Path: ":memory:"}})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.SQLite{}, s)
	closeStore()

	_, _, err = newStorage(&config.Config{Storage: config.Storage{Driver: "redis"}})
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestSetupLoggerLevels(t *testing.T) {
	ctx := context.Background()

	assert.False(t, setupLogger("prod").Enabled(ctx, slog.LevelDebug))
	assert.True(t, setupLogger("prod").Enabled(ctx, slog.LevelInfo))
	assert.True(t, setupLogger("staging").Enabled(ctx, slog.LevelDebug))
	assert.True(t, setupLogger("dev").Enabled(ctx, slog.LevelDebug))
}
