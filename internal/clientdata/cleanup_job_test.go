package clientdata

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Equal(t, "oracle_cache_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	now := time.Now()
	for _, table := range AllTables {
		keyCol := getKeyColumn(table)
		insertRaw(t, db, table, keyCol, "expired", "x", now.Add(-time.Hour).Unix())
		insertRaw(t, db, table, keyCol, "fresh", "x", now.Add(time.Hour).Unix())
	}

	require.NoError(t, job.Run())

	for _, table := range AllTables {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Equal(t, 1, count, table)
	}
}

func TestCleanupJobSweep_CountsPerKind(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	expired := time.Now().Add(-time.Minute).Unix()
	insertRaw(t, db, TableMetrics, "symbol", "AAPL", "x", expired)
	insertRaw(t, db, TableMetrics, "symbol", "MSFT", "x", expired)
	insertRaw(t, db, TableNarratives, "cache_key", "k1", "x", expired)

	result, err := job.Sweep()
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Metrics: 2, Weights: 0, Narratives: 1}, result)
	assert.Equal(t, int64(3), result.Total())

	result, err = job.Sweep()
	require.NoError(t, err)
	assert.Zero(t, result.Total())
}

func TestCleanupJobRun_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.NoError(t, job.Run())
}

func TestCleanupJobRun_MissingTables(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Exec("DROP TABLE oracle_weights")
	require.NoError(t, err)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Error(t, job.Run())
}
