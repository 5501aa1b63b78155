package handler

import (
	"net/http"
	"runtime"
	"time"

	"oyna-console/internal/service"
	"oyna-console/pkg/response"
)

// AdminHandler serves the console dashboard.
type AdminHandler struct {
	dashboard   *service.DashboardService
	storageType string
	startTime   time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(dashboard *service.DashboardService, storageType string) *AdminHandler {
	return &AdminHandler{
		dashboard:   dashboard,
		storageType: storageType,
		startTime:   time.Now(),
	}
}

// DashboardResponse is the dashboard page.
type DashboardResponse struct {
	Cards  []service.Card `json:"cards"`
	System SystemInfo     `json:"system"`
}

// SystemInfo describes the console process.
type SystemInfo struct {
	UptimeSeconds int64   `json:"uptime_seconds"`
	ServerTime    string  `json:"server_time"`
	StorageType   string  `json:"storage_type"`
	AllocMB       float64 `json:"alloc_mb"`
	Goroutines    int     `json:"goroutines"`
	GoVersion     string  `json:"go_version"`
}

// GetDashboard handles GET /console/dashboard
func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	client, _, ok := sessionClient(w, r)
	if !ok {
		return
	}

	cards := h.dashboard.Cards(r.Context(), client)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response.OK(w, DashboardResponse{
		Cards: cards,
		System: SystemInfo{
			UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
			ServerTime:    time.Now().Format(time.RFC3339),
			StorageType:   h.storageType,
			AllocMB:       float64(int(float64(memStats.Alloc)/1024/1024*100)) / 100,
			Goroutines:    runtime.NumGoroutine(),
			GoVersion:     runtime.Version(),
		},
	})
}
