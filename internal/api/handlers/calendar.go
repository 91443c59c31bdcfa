package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rental-availability/backend/internal/api/middleware"
	"github.com/rental-availability/backend/internal/availability"
	"github.com/rental-availability/backend/internal/feedsync"
	"github.com/rental-availability/backend/internal/ical"
	"github.com/rental-availability/backend/internal/storage"
	ws "github.com/rental-availability/backend/internal/websocket"
)

// maxImportBytes caps an uploaded interchange document.
const maxImportBytes = 10 << 20

// GetCalendar returns the property's blocked days as compressed ranges.
func GetCalendar(sessions *availability.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		sess, err := sessions.Get(r.Context(), propertyID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}

		ranges := sess.Store.ToRanges()
		if ranges == nil {
			ranges = []availability.BlockedRange{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ranges)
	}
}

// DayResponse describes one day's availability.
type DayResponse struct {
	Date    availability.Day        `json:"date"`
	Blocked bool                    `json:"blocked"`
	Source  *availability.SourceTag `json:"source,omitempty"`
}

// GetCalendarDay answers an availability query for a single day.
func GetCalendarDay(sessions *availability.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		propertyID := vars["id"]

		day, err := availability.ParseDay(vars["date"])
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid date")
			return
		}

		sess, err := sessions.Get(r.Context(), propertyID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}

		resp := DayResponse{Date: day}
		if tag, blocked := sess.Store.SourceOf(day); blocked {
			resp.Blocked = true
			resp.Source = &tag
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// PointerRequest is one pointer event over a day cell.
type PointerRequest struct {
	Action string `json:"action"` // "down", "enter" or "up"
	Date   string `json:"date,omitempty"`
}

// PointerResponse reports the gesture state after the event, including the
// live highlight range while dragging.
type PointerResponse struct {
	State          availability.GestureState `json:"state"`
	HighlightStart *availability.Day         `json:"highlight_start,omitempty"`
	HighlightEnd   *availability.Day         `json:"highlight_end,omitempty"`
	BlockedDays    int                       `json:"blocked_days"`
}

// CalendarPointer feeds a pointer event into the property's selection
// gesture. A completed gesture commits exactly one mutation to the
// in-memory map; persistence happens on save.
func CalendarPointer(sessions *availability.SessionManager, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		var req PointerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		sess, err := sessions.Get(r.Context(), propertyID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}

		switch req.Action {
		case "down", "enter":
			day, err := availability.ParseDay(req.Date)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid date")
				return
			}
			if req.Action == "down" {
				sess.Gesture.PointerDown(day)
			} else {
				sess.Gesture.PointerEnter(day)
			}
		case "up":
			sess.Gesture.PointerUp()
			if hub != nil {
				ws.NewEventBroadcaster(hub).BroadcastCalendarUpdated(propertyID, sess.Store.Len())
			}
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Unknown pointer action")
			return
		}

		resp := PointerResponse{
			State:       sess.Gesture.State(),
			BlockedDays: sess.Store.Len(),
		}
		if start, end, ok := sess.Gesture.Highlight(); ok {
			resp.HighlightStart = &start
			resp.HighlightEnd = &end
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// SaveCalendar flushes the property's session to persistent storage.
func SaveCalendar(sessions *availability.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		if err := sessions.Save(r.Context(), propertyID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to save calendar")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearCalendar empties the property's blocked-date map and persists the
// empty state.
func ClearCalendar(sessions *availability.SessionManager, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		sess, err := sessions.Get(r.Context(), propertyID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}

		sess.Store.ClearAll()
		if err := sessions.Save(r.Context(), propertyID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to save calendar")
			return
		}

		if hub != nil {
			ws.NewEventBroadcaster(hub).BroadcastCalendarUpdated(propertyID, 0)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ExportCalendar renders the property's blocked days as an iCalendar
// document, one all-day event per range.
func ExportCalendar(sessions *availability.SessionManager, feedRepo *storage.FeedRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		sess, err := sessions.Get(r.Context(), propertyID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load calendar")
			return
		}

		labels := make(map[string]string)
		if feeds, err := feedRepo.ListForProperty(r.Context(), propertyID); err == nil {
			for _, feed := range feeds {
				labels[feed.ID] = feed.Name
			}
		}

		doc := ical.Encode(sess.Store.ToRanges(), labels)

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="blocked-dates.ics"`)
		io.WriteString(w, doc)
	}
}

// ImportCalendar imports an uploaded interchange document into one of the
// property's manual-import feeds, identified by the feed_id query
// parameter.
func ImportCalendar(controller *feedsync.Controller, feedRepo *storage.FeedRepository, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		feedID := r.URL.Query().Get("feed_id")
		if feedID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "feed_id query parameter is required")
			return
		}

		feed, err := feedRepo.GetByID(r.Context(), feedID)
		if err != nil || feed == nil || feed.PropertyID != propertyID {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found for property")
			return
		}

		document, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Failed to read document")
			return
		}

		result, err := controller.ImportFromDocument(r.Context(), feedID, document)
		if err != nil {
			middleware.WriteError(w, http.StatusUnprocessableEntity, middleware.ErrValidation, err.Error())
			return
		}

		if hub != nil && result.ImportedCount > 0 {
			ws.NewEventBroadcaster(hub).BroadcastFeedSyncCompleted(*result)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
