package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rental-availability/backend/internal/api/middleware"
	"github.com/rental-availability/backend/internal/feedsync"
	"github.com/rental-availability/backend/internal/storage"
	"github.com/rental-availability/backend/internal/storage/models"
)

// FeedRequest is the create/update body for a calendar feed.
type FeedRequest struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	SourceType      string `json:"source_type"`
	Enabled         bool   `json:"enabled"`
	ClearOnDisable  bool   `json:"clear_on_disable"`
	SyncIntervalMin int    `json:"sync_interval_min"`
}

// ListFeeds returns all feeds configured for a property.
func ListFeeds(feedRepo *storage.FeedRepository, scheduler *feedsync.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		feeds, err := feedRepo.ListForProperty(r.Context(), propertyID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query feeds")
			return
		}
		if feeds == nil {
			feeds = []models.CalendarFeed{}
		}

		if scheduler != nil {
			for i := range feeds {
				feeds[i].NextSyncAt = scheduler.NextRun(feeds[i].ID)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(feeds)
	}
}

// CreateFeed registers a new feed for a property.
func CreateFeed(controller *feedsync.Controller, scheduler *feedsync.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		var req FeedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.SyncIntervalMin < 5 {
			req.SyncIntervalMin = 15
		}

		feed := &models.CalendarFeed{
			PropertyID:      propertyID,
			Name:            req.Name,
			URL:             req.URL,
			SourceType:      req.SourceType,
			Enabled:         req.Enabled,
			ClearOnDisable:  req.ClearOnDisable,
			SyncIntervalMin: req.SyncIntervalMin,
		}

		if err := controller.RegisterFeed(r.Context(), feed); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}

		if scheduler != nil && feed.Enabled {
			scheduler.ScheduleFeed(*feed)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(feed)
	}
}

// GetFeed returns a single feed by ID.
func GetFeed(feedRepo *storage.FeedRepository, scheduler *feedsync.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		feed, err := feedRepo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query feed")
			return
		}
		if feed == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found")
			return
		}

		if scheduler != nil {
			feed.NextSyncAt = scheduler.NextRun(feed.ID)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(feed)
	}
}

// UpdateFeed updates an existing feed's configuration.
func UpdateFeed(feedRepo *storage.FeedRepository, scheduler *feedsync.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req FeedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		feed, err := feedRepo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query feed")
			return
		}
		if feed == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found")
			return
		}

		feed.Name = req.Name
		feed.URL = req.URL
		if req.SourceType != "" {
			feed.SourceType = req.SourceType
		}
		feed.Enabled = req.Enabled
		feed.ClearOnDisable = req.ClearOnDisable
		feed.SyncIntervalMin = req.SyncIntervalMin

		if err := feedRepo.Update(r.Context(), feed); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update feed")
			return
		}

		if scheduler != nil {
			scheduler.ScheduleFeed(*feed)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteFeed deregisters a feed. With ?cascade=true its imported days are
// removed from the property's calendar as well.
func DeleteFeed(controller *feedsync.Controller, scheduler *feedsync.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		cascade := r.URL.Query().Get("cascade") == "true"

		if err := controller.DeregisterFeed(r.Context(), id, cascade); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, err.Error())
			return
		}

		if scheduler != nil {
			scheduler.UnscheduleFeed(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ToggleFeed enables or disables a feed.
func ToggleFeed(controller *feedsync.Controller, feedRepo *storage.FeedRepository, scheduler *feedsync.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := controller.ToggleEnabled(r.Context(), id, req.Enabled); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, err.Error())
			return
		}

		if scheduler != nil {
			if feed, err := feedRepo.GetByID(r.Context(), id); err == nil && feed != nil {
				scheduler.ScheduleFeed(*feed)
			}
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// SyncFeed triggers a manual sync for a feed and returns immediately.
func SyncFeed(feedRepo *storage.FeedRepository, scheduler *feedsync.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		feed, err := feedRepo.GetByID(r.Context(), id)
		if err != nil || feed == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found")
			return
		}

		scheduler.TriggerSync(id)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": models.SyncStatusSyncing})
	}
}
