package feedsync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rental-availability/backend/internal/storage/models"
	"github.com/rental-availability/backend/internal/websocket"
)

// Scheduler runs periodic sync jobs for enabled provider feeds.
type Scheduler struct {
	cron        *cron.Cron
	controller  *Controller
	feeds       FeedStore
	broadcaster *websocket.EventBroadcaster

	jobs   map[string]cron.EntryID
	jobsMu sync.RWMutex

	defaultInterval time.Duration
}

// NewScheduler creates a feed sync scheduler. hub may be nil when no UI
// clients need push updates.
func NewScheduler(controller *Controller, feeds FeedStore, hub *websocket.Hub, defaultIntervalMin int) *Scheduler {
	if defaultIntervalMin <= 0 {
		defaultIntervalMin = 15
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:            cron.New(),
		controller:      controller,
		feeds:           feeds,
		broadcaster:     broadcaster,
		jobs:            make(map[string]cron.EntryID),
		defaultInterval: time.Duration(defaultIntervalMin) * time.Minute,
	}
}

// Start loads all enabled feeds, schedules them, and begins the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Println("Starting feed sync scheduler...")

	feeds, err := s.feeds.ListEnabled(ctx)
	if err != nil {
		return err
	}

	for _, feed := range feeds {
		s.ScheduleFeed(feed)
	}

	// Catch feeds added or modified outside the scheduler's view.
	s.cron.AddFunc("@every 5m", func() {
		s.refreshSchedules(context.Background())
	})

	s.cron.Start()
	log.Printf("Feed scheduler started with %d feeds", len(feeds))

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	log.Println("Stopping feed sync scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Feed scheduler stopped")
}

// ScheduleFeed adds or updates a feed's periodic sync job. Disabled and
// manual-import feeds are unscheduled instead.
func (s *Scheduler) ScheduleFeed(feed models.CalendarFeed) {
	if !feed.Enabled || feed.SourceType != models.SourceTypeProvider {
		s.UnscheduleFeed(feed.ID)
		return
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if existingID, exists := s.jobs[feed.ID]; exists {
		s.cron.Remove(existingID)
		delete(s.jobs, feed.ID)
	}

	interval := time.Duration(feed.SyncIntervalMin) * time.Minute
	if interval < time.Minute {
		interval = s.defaultInterval
	}

	feedID := feed.ID
	entryID, err := s.cron.AddFunc("@every "+interval.String(), func() {
		s.runSync(feedID)
	})
	if err != nil {
		log.Printf("Failed to schedule feed %s: %v", feed.ID, err)
		return
	}

	s.jobs[feed.ID] = entryID
	log.Printf("Scheduled feed %s (%s) every %s", feed.ID, feed.Name, interval)
}

// UnscheduleFeed removes a feed's periodic sync job.
func (s *Scheduler) UnscheduleFeed(feedID string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if entryID, exists := s.jobs[feedID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, feedID)
		log.Printf("Unscheduled feed %s", feedID)
	}
}

// TriggerSync starts an immediate background sync for a feed.
func (s *Scheduler) TriggerSync(feedID string) {
	go s.runSync(feedID)
}

func (s *Scheduler) runSync(feedID string) {
	ctx := context.Background()
	result, err := s.controller.TriggerSync(ctx, feedID)
	if err != nil {
		log.Printf("Feed sync failed for %s: %v", feedID, err)
		if s.broadcaster != nil && result != nil {
			s.broadcaster.BroadcastFeedSyncError(result.FeedID, result.FeedName, err)
		}
		return
	}

	log.Printf("Feed sync completed for %s: %d days imported, %d cleared",
		feedID, result.ImportedCount, result.ClearedCount)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastFeedSyncCompleted(*result)
	}
}

// refreshSchedules reloads feed schedules from the registry and drops jobs
// for feeds that are gone or disabled.
func (s *Scheduler) refreshSchedules(ctx context.Context) {
	feeds, err := s.feeds.ListEnabled(ctx)
	if err != nil {
		log.Printf("Failed to refresh feed schedules: %v", err)
		return
	}

	currentIDs := make(map[string]bool)
	for _, feed := range feeds {
		currentIDs[feed.ID] = true
		s.ScheduleFeed(feed)
	}

	s.jobsMu.Lock()
	for feedID := range s.jobs {
		if !currentIDs[feedID] {
			s.cron.Remove(s.jobs[feedID])
			delete(s.jobs, feedID)
			log.Printf("Removed schedule for feed %s (no longer enabled)", feedID)
		}
	}
	s.jobsMu.Unlock()
}

// NextRun returns the next scheduled sync time for a feed, if any.
func (s *Scheduler) NextRun(feedID string) *time.Time {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	if entryID, exists := s.jobs[feedID]; exists {
		entry := s.cron.Entry(entryID)
		if !entry.Next.IsZero() {
			next := entry.Next
			return &next
		}
	}
	return nil
}
