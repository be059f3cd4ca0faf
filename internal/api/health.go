package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pulseboard/pulseboard/internal/api/respond"
)

// HealthHandler handles the health endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

var healthyFlag atomic.Int32

// serviceIsHealthy is injected by run.go via BindServiceHealth.
var serviceIsHealthy = func() bool { return healthyFlag.Load() == 1 }

func BindServiceHealth(f func() bool) { serviceIsHealthy = f }

// CheckHealth handles GET /api/health. Always 200; the body reports status.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if serviceIsHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
