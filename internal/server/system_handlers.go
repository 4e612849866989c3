package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Hamza-spc/CountryCompare/internal/database"
)

// SystemHandlers expose process and host level status.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases []*database.DB
	startTime time.Time
}

// NewSystemHandlers creates system status handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, databases []*database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		databases: databases,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
	})
}

// DatabaseStatus reports one database's file size on disk.
type DatabaseStatus struct {
	Name      string  `json:"name"`
	SizeBytes int64   `json:"size_bytes"`
	SizeMB    float64 `json:"size_mb"`
}

// SystemStatusResponse is the payload of GET /api/system/status.
type SystemStatusResponse struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	Goroutines    int              `json:"goroutines"`
	Databases     []DatabaseStatus `json:"databases"`
	DataDirSizeMB float64          `json:"data_dir_size_mb"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.getSystemStats()

	response := SystemStatusResponse{
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		Goroutines:    runtime.NumGoroutine(),
		Databases:     h.databaseStats(),
		DataDirSizeMB: h.getDirSize(h.dataDir),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": response,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode system status")
	}
}

func (h *SystemHandlers) databaseStats() []DatabaseStatus {
	stats := make([]DatabaseStatus, 0, len(h.databases))
	for _, db := range h.databases {
		var size int64
		if info, err := os.Stat(db.Path()); err == nil {
			size = info.Size()
		}
		stats = append(stats, DatabaseStatus{
			Name:      db.Name(),
			SizeBytes: size,
			SizeMB:    float64(size) / 1024 / 1024,
		})
	}
	return stats
}

// getSystemStats samples CPU over a short window so the endpoint stays
// fast for pollers.
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

func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var total int64
	_ = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return float64(total) / 1024 / 1024
}
