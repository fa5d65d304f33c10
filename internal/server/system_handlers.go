package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/orionpms/orion/internal/domain"
	"github.com/orionpms/orion/internal/modules/mirror"
)

// SystemHandlers handles system monitoring endpoints for the admin page.
type SystemHandlers struct {
	log        zerolog.Logger
	dataDir    string
	mirrorRepo *mirror.Repository
	startedAt  time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, mirrorRepo *mirror.Repository) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("component", "system_handlers").Logger(),
		dataDir:    dataDir,
		mirrorRepo: mirrorRepo,
		startedAt:  time.Now(),
	}
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Goroutines    int               `json:"goroutines"`
	CPUPercent    *float64          `json:"cpuPercent"`
	MemoryUsedPct *float64          `json:"memoryUsedPct"`
	DiskUsedPct   *float64          `json:"diskUsedPct"`
	LastMirrorRun *domain.MirrorRun `json:"lastMirrorRun,omitempty"`
}

// HandleSystemStatus returns host metrics and the last mirror run.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		Status:        "running",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	// Host metrics are best-effort; a probe failure does not fail the page.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = &percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp.MemoryUsedPct = &vm.UsedPercent
	}
	if du, err := disk.Usage(h.dataDir); err == nil {
		resp.DiskUsedPct = &du.UsedPercent
	}

	if runs, err := h.mirrorRepo.RecentRuns(1); err == nil && len(runs) > 0 {
		resp.LastMirrorRun = &runs[0]
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
