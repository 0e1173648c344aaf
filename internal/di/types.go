// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/stockscorer/internal/clientdata"
	"github.com/aristath/stockscorer/internal/clients/gemini"
	"github.com/aristath/stockscorer/internal/database"
	"github.com/aristath/stockscorer/internal/modules/advisor"
	"github.com/aristath/stockscorer/internal/modules/projects"
	"github.com/aristath/stockscorer/internal/reliability"
	"github.com/aristath/stockscorer/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server for access to services.
type Container struct {
	// Databases
	AppDB   *database.DB // project documents
	CacheDB *database.DB // oracle responses

	// Repositories
	ProjectRepo *projects.Repository
	OracleCache *clientdata.Repository

	// Clients
	GeminiClient *gemini.Client

	// Services
	AdvisorService *advisor.Service
	BackupService  *reliability.BackupService // nil when backups are disabled

	Scheduler *scheduler.Scheduler
}

// Databases returns every open database by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 2)
	if c.AppDB != nil {
		dbs[c.AppDB.Name()] = c.AppDB
	}
	if c.CacheDB != nil {
		dbs[c.CacheDB.Name()] = c.CacheDB
	}
	return dbs
}

// Close closes every database. Stop the scheduler first.
func (c *Container) Close() {
	for _, db := range c.Databases() {
		_ = db.Close()
	}
}

// JobInstances holds the scheduled jobs, also runnable through the API
type JobInstances struct {
	CacheCleanup  scheduler.Job
	WALCheckpoint scheduler.Job
	Maintenance   scheduler.Job
	Backup        scheduler.Job // nil when backups are disabled
}

// All returns the registered jobs keyed by name
func (j *JobInstances) All() map[string]scheduler.Job {
	all := make(map[string]scheduler.Job, 4)
	for _, job := range []scheduler.Job{j.CacheCleanup, j.WALCheckpoint, j.Maintenance, j.Backup} {
		if job != nil {
			all[job.Name()] = job
		}
	}
	return all
}
