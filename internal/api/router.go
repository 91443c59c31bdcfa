// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rental-availability/backend/internal/api/handlers"
	"github.com/rental-availability/backend/internal/api/middleware"
	"github.com/rental-availability/backend/internal/availability"
	"github.com/rental-availability/backend/internal/feedsync"
	"github.com/rental-availability/backend/internal/storage"
	"github.com/rental-availability/backend/internal/websocket"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(
	db *storage.DB,
	hub *websocket.Hub,
	staticDir string,
	sessions *availability.SessionManager,
	feedRepo *storage.FeedRepository,
	controller *feedsync.Controller,
	scheduler *feedsync.Scheduler,
) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(db)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(db, hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(hub)).Methods("GET")

	// Per-property availability calendar
	api.HandleFunc("/properties/{id}/calendar", handlers.GetCalendar(sessions)).Methods("GET")
	api.HandleFunc("/properties/{id}/calendar", handlers.ClearCalendar(sessions, hub)).Methods("DELETE")
	api.HandleFunc("/properties/{id}/calendar/day/{date}", handlers.GetCalendarDay(sessions)).Methods("GET")
	api.HandleFunc("/properties/{id}/calendar/pointer", handlers.CalendarPointer(sessions, hub)).Methods("POST")
	api.HandleFunc("/properties/{id}/calendar/save", handlers.SaveCalendar(sessions)).Methods("POST")
	api.HandleFunc("/properties/{id}/calendar/export", handlers.ExportCalendar(sessions, feedRepo)).Methods("GET")
	api.HandleFunc("/properties/{id}/calendar/import", handlers.ImportCalendar(controller, feedRepo, hub)).Methods("POST")

	// Feed endpoints
	api.HandleFunc("/properties/{id}/feeds", handlers.ListFeeds(feedRepo, scheduler)).Methods("GET")
	api.HandleFunc("/properties/{id}/feeds", handlers.CreateFeed(controller, scheduler)).Methods("POST")
	api.HandleFunc("/feeds/{id}", handlers.GetFeed(feedRepo, scheduler)).Methods("GET")
	api.HandleFunc("/feeds/{id}", handlers.UpdateFeed(feedRepo, scheduler)).Methods("PUT")
	api.HandleFunc("/feeds/{id}", handlers.DeleteFeed(controller, scheduler)).Methods("DELETE")
	api.HandleFunc("/feeds/{id}/sync", handlers.SyncFeed(feedRepo, scheduler)).Methods("POST")
	api.HandleFunc("/feeds/{id}/toggle", handlers.ToggleFeed(controller, feedRepo, scheduler)).Methods("POST")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	return r
}
