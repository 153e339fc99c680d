package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

type systemStatus struct {
	Version       string  `json:"version"`
	UptimeHours   float64 `json:"uptime_hours"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	ProviderMode  string  `json:"provider_mode"`
	ProviderTier  string  `json:"provider_tier"`
}

// handleSystemStatus handles GET /api/system/status requests.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := systemStatus{
		Version:      Version,
		UptimeHours:  time.Since(s.startupTime).Hours(),
		ProviderMode: s.cfg.ProviderMode,
		ProviderTier: s.cfg.ProviderTier,
	}

	if percentages, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percentages) > 0 {
		status.CPUPercent = percentages[0]
	} else if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryPercent = vm.UsedPercent
		status.MemoryUsedMB = float64(vm.Used) / 1024 / 1024
	} else {
		s.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	s.respondJSON(w, http.StatusOK, status)
}
