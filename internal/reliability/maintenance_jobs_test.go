package reliability

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockscorer/internal/database"
)

func newMaintenanceDBs(t *testing.T) (map[string]*database.DB, string) {
	t.Helper()
	dir := t.TempDir()
	dbs := make(map[string]*database.DB)
	for name, profile := range map[string]database.DatabaseProfile{
		"app":   database.ProfileStandard,
		"cache": database.ProfileCache,
	} {
		db, err := database.New(database.Config{Path: filepath.Join(dir, name+".db"), Profile: profile, Name: name})
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, db.Migrate())
		dbs[name] = db
	}
	return dbs, dir
}

func fakeDisk(freeBytes uint64, err error) func(string) (*disk.UsageStat, error) {
	return func(path string) (*disk.UsageStat, error) {
		if err != nil {
			return nil, err
		}
		return &disk.UsageStat{Path: path, Free: freeBytes}, nil
	}
}

func TestMaintenanceJob_Run(t *testing.T) {
	dbs, dir := newMaintenanceDBs(t)
	job := NewMaintenanceJob(dbs, []string{"cache", "missing"}, dir, zerolog.New(nil).Level(zerolog.Disabled))
	job.diskUsage = fakeDisk(50e9, nil)

	assert.Equal(t, "db_maintenance", job.Name())
	assert.NoError(t, job.Run())
}

func TestMaintenanceJob_DiskSpace(t *testing.T) {
	dbs, dir := newMaintenanceDBs(t)
	job := NewMaintenanceJob(dbs, nil, dir, zerolog.New(nil).Level(zerolog.Disabled))

	job.diskUsage = fakeDisk(1e8, nil)
	assert.ErrorContains(t, job.Run(), "GB free")

	job.diskUsage = fakeDisk(1e9, nil)
	assert.NoError(t, job.Run(), "low space only warns")

	job.diskUsage = fakeDisk(0, errors.New("statfs failed"))
	assert.ErrorContains(t, job.Run(), "statfs failed")
}

func TestMaintenanceJob_HealthCheckFailure(t *testing.T) {
	dbs, dir := newMaintenanceDBs(t)
	require.NoError(t, dbs["cache"].Close())

	job := NewMaintenanceJob(dbs, []string{"cache"}, dir, zerolog.New(nil).Level(zerolog.Disabled))
	job.diskUsage = fakeDisk(50e9, nil)

	assert.ErrorContains(t, job.Run(), "health check failed for cache")
}
