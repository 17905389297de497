package handlers

import (
	"net/http"
	"time"

	"github.com/matchcore/orderbook/internal/api/models"
)

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime)

	response := models.HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(uptime.Seconds()),
		Version:       "1.0.0",
	}

	writeJSON(w, http.StatusOK, response)
}
