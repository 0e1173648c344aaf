package reliability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/stockscorer/internal/database"
)

// Free space thresholds for the data directory
const (
	criticalFreeGB = 0.5
	lowFreeGB      = 2.0
)

// MaintenanceJob checks database integrity and free disk space, then
// compacts the cache database. Project data is never vacuumed implicitly.
type MaintenanceJob struct {
	databases map[string]*database.DB
	vacuum    []string
	dataDir   string
	log       zerolog.Logger

	diskUsage func(path string) (*disk.UsageStat, error)
}

// NewMaintenanceJob creates a new maintenance job. vacuum names the
// databases compacted on each run.
func NewMaintenanceJob(databases map[string]*database.DB, vacuum []string, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		vacuum:    vacuum,
		dataDir:   dataDir,
		log:       log.With().Str("job", "db_maintenance").Logger(),
		diskUsage: disk.Usage,
	}
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting database maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Integrity failures halt the run before anything rewrites the files
	for _, name := range j.names() {
		if err := j.databases[name].HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("CRITICAL: Database failed health check")
			return fmt.Errorf("health check failed for %s: %w", name, err)
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	for _, name := range j.vacuum {
		db, ok := j.databases[name]
		if !ok {
			continue
		}
		if err := j.vacuumDatabase(db, name); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("VACUUM failed")
		}
	}

	j.logDatabaseStats()

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Database maintenance completed successfully")

	return nil
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "db_maintenance"
}

// checkDiskSpace fails the run when the data directory is almost full
func (j *MaintenanceJob) checkDiskSpace() error {
	usage, err := j.diskUsage(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableGB := float64(usage.Free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	if availableGB < criticalFreeGB {
		j.log.Error().Float64("available_gb", availableGB).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("only %.2f GB free in %s", availableGB, j.dataDir)
	}
	if availableGB < lowFreeGB {
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}

	return nil
}

func (j *MaintenanceJob) vacuumDatabase(db *database.DB, name string) error {
	before, err := db.GetStats()
	if err != nil {
		return err
	}

	if _, err := db.Conn().Exec("VACUUM"); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}

	after, err := db.GetStats()
	if err != nil {
		return err
	}

	j.log.Info().
		Str("database", name).
		Int64("pages_before", before.PageCount).
		Int64("pages_after", after.PageCount).
		Int64("bytes_reclaimed", (before.PageCount-after.PageCount)*after.PageSize).
		Msg("VACUUM completed")

	return nil
}

func (j *MaintenanceJob) logDatabaseStats() {
	for _, name := range j.names() {
		stats, err := j.databases[name].GetStats()
		if err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("Failed to read database stats")
			continue
		}
		j.log.Info().
			Str("database", name).
			Int64("size_bytes", stats.SizeBytes).
			Int64("wal_size_bytes", stats.WALSizeBytes).
			Int64("freelist_count", stats.FreelistCount).
			Msg("Database metrics")
	}
}

func (j *MaintenanceJob) names() []string {
	names := make([]string, 0, len(j.databases))
	for name := range j.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
