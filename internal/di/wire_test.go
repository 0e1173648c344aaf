package di

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockscorer/internal/config"
	"github.com/aristath/stockscorer/internal/modules/projects"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir: t.TempDir(),
		Port:    8000,
		Oracle: &config.OracleConfig{
			Model:      "gemini-1.5-flash",
			BaseURL:    "http://127.0.0.1:1",
			Timeout:    time.Second,
			MaxRetries: 0,
			CacheTTL:   time.Hour,
		},
		Backup: &config.BackupConfig{},
		Schedule: &config.ScheduleConfig{
			Backup:        "0 0 3 * * *",
			CacheCleanup:  "0 30 * * * *",
			WALCheckpoint: "0 0 * * * *",
			Maintenance:   "0 0 4 * * 0",
		},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	assert.NotNil(t, container.AppDB)
	assert.NotNil(t, container.CacheDB)
	assert.NotNil(t, container.ProjectRepo)
	assert.NotNil(t, container.OracleCache)
	assert.NotNil(t, container.AdvisorService)
	assert.NotNil(t, container.Scheduler)
	assert.Nil(t, container.BackupService, "backups disabled by default")
	assert.False(t, container.GeminiClient.Configured())

	assert.Len(t, container.Databases(), 2)

	all := jobs.All()
	assert.Len(t, all, 3)
	assert.Contains(t, all, "oracle_cache_cleanup")
	assert.Contains(t, all, "wal_checkpoint")
	assert.Contains(t, all, "db_maintenance")
	assert.NotContains(t, all, "project_backup")

	assert.Len(t, container.Scheduler.Jobs(), 3)
}

func TestWire_RepositoriesAreUsable(t *testing.T) {
	container, _, err := Wire(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	ctx := context.Background()
	require.NoError(t, container.ProjectRepo.Upsert(ctx, projects.Document{"id": "p", "name": "P"}))

	docs, err := container.ProjectRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	// Without an API key the advisor answers with its fallback
	res := container.AdvisorService.AnalyzeStock(ctx, "AAPL")
	assert.True(t, res.FallbackUsed)
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedule.WALCheckpoint = "every hour please"

	_, _, err := Wire(context.Background(), cfg, zerolog.Nop())

	assert.ErrorContains(t, err, "wal_checkpoint")
}

func TestWire_BackupsEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup = &config.BackupConfig{
		Enabled:       true,
		Bucket:        "scores",
		Region:        "us-east-1",
		Endpoint:      "http://127.0.0.1:9000",
		AccessKey:     "key",
		SecretKey:     "secret",
		Prefix:        "test",
		RetentionDays: 7,
	}

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	assert.NotNil(t, container.BackupService)
	assert.Contains(t, jobs.All(), "project_backup")
	assert.Len(t, container.Scheduler.Jobs(), 4)
}
