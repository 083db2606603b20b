package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/di"
	"github.com/aristath/folio/internal/reliability"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/aristath/folio/internal/utils"
)

// SystemHandlers serves host, database and job endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	db        *database.DB
	scheduler *scheduler.Scheduler
	backups   *reliability.BackupService
	jobs      map[string]scheduler.Job
	startedAt time.Time
}

// NewSystemHandlers creates system handlers. backups may be nil.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	db *database.DB,
	sched *scheduler.Scheduler,
	backups *reliability.BackupService,
	jobs *di.JobInstances,
) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		db:        db,
		scheduler: sched,
		backups:   backups,
		jobs:      map[string]scheduler.Job{},
		startedAt: time.Now(),
	}
	if jobs != nil {
		h.jobs = jobs.ByName()
	}
	return h
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status         string          `json:"status" msgpack:"status"`
	UptimeSeconds  int64           `json:"uptime_seconds" msgpack:"uptime_seconds"`
	CPUPercent     float64         `json:"cpu_percent" msgpack:"cpu_percent"`
	MemoryPercent  float64         `json:"memory_percent" msgpack:"memory_percent"`
	DiskFreeBytes  uint64          `json:"disk_free_bytes" msgpack:"disk_free_bytes"`
	Database       *database.Stats `json:"database,omitempty" msgpack:"database,omitempty"`
	Jobs           []string        `json:"jobs" msgpack:"jobs"`
	BackupsEnabled bool            `json:"backups_enabled" msgpack:"backups_enabled"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Jobs:           h.jobNames(),
		BackupsEnabled: h.backups != nil,
	}

	if usage, err := disk.Usage(h.dataDir); err == nil {
		response.DiskFreeBytes = usage.Free
	} else {
		h.log.Warn().Err(err).Msg("Failed to get disk usage")
	}

	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get database stats")
		response.Status = "degraded"
	} else {
		response.Database = stats
	}

	utils.WriteData(w, r, http.StatusOK, response)
}

// HandleDatabaseStats handles GET /api/system/database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to get database stats")
		return
	}
	utils.WriteData(w, r, http.StatusOK, stats)
}

// HandleListBackups handles GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		utils.WriteError(w, r, http.StatusNotFound, "backups are not configured", "")
		return
	}

	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to list backups")
		return
	}
	utils.WriteData(w, r, http.StatusOK, map[string]interface{}{"backups": backups})
}

// JobRunResponse reports a manually triggered job.
type JobRunResponse struct {
	Job        string `json:"job" msgpack:"job"`
	Status     string `json:"status" msgpack:"status"`
	DurationMs int64  `json:"duration_ms" msgpack:"duration_ms"`
	Error      string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// HandleTriggerJob handles POST /api/system/jobs/{job}
// The job runs on the request goroutine and the response reports its outcome.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "job")
	job, ok := h.jobs[name]
	if !ok {
		utils.WriteError(w, r, http.StatusNotFound, "unknown job", "job")
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job triggered")

	start := time.Now()
	err := h.scheduler.RunNow(job)
	response := JobRunResponse{
		Job:        name,
		Status:     "completed",
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		response.Status = "failed"
		response.Error = err.Error()
		utils.WriteData(w, r, http.StatusInternalServerError, response)
		return
	}
	utils.WriteData(w, r, http.StatusOK, response)
}

func (h *SystemHandlers) jobNames() []string {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getSystemStats returns CPU and RAM usage percentages.
// The CPU sample window is kept short so the endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
