// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rental-availability/backend/internal/storage"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	FeedsCount        int `json:"feeds_count"`
	EnabledFeedsCount int `json:"enabled_feeds_count"`
	BlockedRangesRows int `json:"blocked_ranges_rows"`
	ConnectedClients  int `json:"connected_clients"`
}

// ClientCounter reports the number of connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, clients ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var feedsCount, enabledCount, rangeRows int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calendar_feeds").Scan(&feedsCount)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calendar_feeds WHERE enabled = 1").Scan(&enabledCount)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocked_ranges").Scan(&rangeRows)

		response := StatusResponse{
			FeedsCount:        feedsCount,
			EnabledFeedsCount: enabledCount,
			BlockedRangesRows: rangeRows,
		}
		if clients != nil {
			response.ConnectedClients = clients.ClientCount()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
