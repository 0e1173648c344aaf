package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/stockscorer/internal/database"
	"github.com/aristath/stockscorer/internal/scheduler"
	"github.com/aristath/stockscorer/internal/version"
)

// JobRunner runs scheduled jobs and reports on them
type JobRunner interface {
	RunNow(job scheduler.Job) error
	Jobs() []scheduler.JobStatus
}

// SystemHandlers contains system-related HTTP handlers
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases map[string]*database.DB
	runner    JobRunner
	jobs      map[string]scheduler.Job
	startup   time.Time

	// systemStats is swapped out in tests
	systemStats func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	databases map[string]*database.DB,
	runner JobRunner,
	jobs map[string]scheduler.Job,
) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("service", "system").Logger(),
		dataDir:   dataDir,
		databases: databases,
		runner:    runner,
		jobs:      jobs,
		startup:   time.Now(),
	}
	h.systemStats = h.getSystemStats
	return h
}

// RegisterRoutes mounts the system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.HandleSystemStatus)
	r.Get("/databases", h.HandleDatabaseStats)
	r.Get("/jobs", h.HandleListJobs)
	r.Post("/jobs/{name}/run", h.HandleRunJob)
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DataDirBytes  int64   `json:"data_dir_bytes"`
	LastCheck     string  `json:"last_check"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	dirSize, err := h.getDirSize(h.dataDir)
	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.dataDir).Msg("Failed to size data directory")
	}

	writeJSON(w, http.StatusOK, SystemStatusResponse{
		Status:        "healthy",
		Version:       version.Version,
		UptimeSeconds: int64(time.Since(h.startup).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		DataDirBytes:  dirSize,
		LastCheck:     time.Now().Format(time.RFC3339),
	})
}

// DatabaseStat is the per database entry of the database stats response
type DatabaseStat struct {
	Name    string          `json:"name"`
	Profile string          `json:"profile"`
	Stats   *database.Stats `json:"stats,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HandleDatabaseStats handles GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]DatabaseStat, 0, len(names))
	for _, name := range names {
		db := h.databases[name]
		entry := DatabaseStat{Name: name, Profile: string(db.Profile())}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			entry.Error = err.Error()
		} else {
			entry.Stats = stats
		}
		result = append(result, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"databases": result,
	})
}

// HandleListJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": []scheduler.JobStatus{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.runner.Jobs(),
	})
}

// HandleRunJob handles POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok || h.runner == nil {
		writeError(w, "unknown job: "+name, http.StatusNotFound)
		return
	}

	start := time.Now()
	if err := h.runner.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"job":    name,
			"status": "failed",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":         name,
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (h *SystemHandlers) getSystemStats() (float64, float64) {
	var cpuPercent float64
	if percents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	var memPercent float64
	if vm, err := mem.VirtualMemory(); err == nil {
		memPercent = vm.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	return cpuPercent, memPercent
}

func (h *SystemHandlers) getDirSize(path string) (int64, error) {
	if path == "" {
		return 0, nil
	}
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
