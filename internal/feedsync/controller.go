// Package feedsync orchestrates fetch -> decode -> merge cycles for the
// external calendar feeds configured on each property.
package feedsync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rental-availability/backend/internal/availability"
	"github.com/rental-availability/backend/internal/ical"
	"github.com/rental-availability/backend/internal/storage/models"
)

// Fetcher retrieves a feed's raw document. Timeouts are the fetcher's
// responsibility; the controller treats any failure the same way.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedStore is the feed registry persistence the controller needs.
// Implemented by *storage.FeedRepository.
type FeedStore interface {
	GetByID(ctx context.Context, id string) (*models.CalendarFeed, error)
	ListEnabled(ctx context.Context) ([]models.CalendarFeed, error)
	Create(ctx context.Context, feed *models.CalendarFeed) error
	Delete(ctx context.Context, id string) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	UpdateSyncStatus(ctx context.Context, id string, status string, syncError *string) error
}

// StoreResolver hands out the per-property blocked-date store and flushes
// it back to persistence. Implemented by *availability.SessionManager.
type StoreResolver interface {
	StoreFor(ctx context.Context, propertyID string) (*availability.Store, error)
	Save(ctx context.Context, propertyID string) error
}

// Controller manages the configured feeds and their sync cycles. One
// feed's failure never aborts another's sync; failures are recorded on the
// failing feed's status and surfaced in its result.
type Controller struct {
	feeds   FeedStore
	stores  StoreResolver
	fetcher Fetcher
}

// NewController creates a feed sync controller.
func NewController(feeds FeedStore, stores StoreResolver, fetcher Fetcher) *Controller {
	return &Controller{
		feeds:   feeds,
		stores:  stores,
		fetcher: fetcher,
	}
}

// RegisterFeed adds a new feed configuration.
func (c *Controller) RegisterFeed(ctx context.Context, feed *models.CalendarFeed) error {
	if feed.PropertyID == "" || feed.Name == "" {
		return fmt.Errorf("feed property and name are required")
	}
	if feed.SourceType == "" {
		feed.SourceType = models.SourceTypeProvider
	}
	if feed.SourceType == models.SourceTypeProvider && feed.URL == "" {
		return fmt.Errorf("provider feeds require an endpoint URL")
	}
	return c.feeds.Create(ctx, feed)
}

// DeregisterFeed removes a feed. With cascade set, its previously imported
// days are removed from the property's map as well.
func (c *Controller) DeregisterFeed(ctx context.Context, feedID string, cascade bool) error {
	feed, err := c.feeds.GetByID(ctx, feedID)
	if err != nil {
		return err
	}
	if feed == nil {
		return fmt.Errorf("feed not found: %s", feedID)
	}

	if cascade {
		if err := c.clearFeedDays(ctx, feed); err != nil {
			return err
		}
	}

	return c.feeds.Delete(ctx, feedID)
}

// ToggleEnabled enables or disables a feed. Disabling stops future syncs;
// whether it also retracts the feed's previously imported days is the
// feed's explicit clear_on_disable choice, never an implicit side effect.
func (c *Controller) ToggleEnabled(ctx context.Context, feedID string, enabled bool) error {
	feed, err := c.feeds.GetByID(ctx, feedID)
	if err != nil {
		return err
	}
	if feed == nil {
		return fmt.Errorf("feed not found: %s", feedID)
	}

	if err := c.feeds.SetEnabled(ctx, feedID, enabled); err != nil {
		return err
	}

	if !enabled && feed.ClearOnDisable {
		return c.clearFeedDays(ctx, feed)
	}
	return nil
}

func (c *Controller) clearFeedDays(ctx context.Context, feed *models.CalendarFeed) error {
	store, err := c.stores.StoreFor(ctx, feed.PropertyID)
	if err != nil {
		return err
	}
	store.RemoveAllForFeed(feed.ID)
	return c.stores.Save(ctx, feed.PropertyID)
}

// ImportFromDocument decodes an interchange document and merges its
// blocked days into the feed's property map.
//
// The merge is atomic: a decode failure mutates nothing, and a document
// that yields zero blocked days is an empty success (ImportedCount 0, no
// mutation), distinguishable from a failure. On success, days the feed
// previously reported but no longer does are cleared before the new set
// is merged, and the result is flushed to storage.
func (c *Controller) ImportFromDocument(ctx context.Context, feedID string, document []byte) (*models.FeedSyncResult, error) {
	feed, err := c.feeds.GetByID(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, fmt.Errorf("feed not found: %s", feedID)
	}
	return c.importDocument(ctx, feed, document)
}

func (c *Controller) importDocument(ctx context.Context, feed *models.CalendarFeed, document []byte) (*models.FeedSyncResult, error) {
	result := &models.FeedSyncResult{
		FeedID:     feed.ID,
		FeedName:   feed.Name,
		PropertyID: feed.PropertyID,
		SyncedAt:   time.Now().UTC(),
	}

	days, err := ical.Decode(document)
	if err != nil {
		c.recordFailure(ctx, feed.ID, err)
		result.Error = err
		return result, err
	}

	if len(days) == 0 {
		// Empty success: the document held no blocked days. No mutation.
		c.recordSuccess(ctx, feed.ID)
		return result, nil
	}

	store, err := c.stores.StoreFor(ctx, feed.PropertyID)
	if err != nil {
		c.recordFailure(ctx, feed.ID, err)
		result.Error = err
		return result, err
	}

	// Clear days the feed no longer reports, then assert the new set.
	incoming := make(map[availability.Day]struct{}, len(days))
	for _, d := range days {
		incoming[d] = struct{}{}
	}
	var stale []availability.Day
	for _, d := range store.DaysForFeed(feed.ID) {
		if _, ok := incoming[d]; !ok {
			stale = append(stale, d)
		}
	}
	store.ClearFeedDates(feed.ID, stale)
	store.MergeFeedDates(feed.ID, days)

	if err := c.stores.Save(ctx, feed.PropertyID); err != nil {
		c.recordFailure(ctx, feed.ID, err)
		result.Error = err
		return result, err
	}

	result.ImportedCount = len(days)
	result.ClearedCount = len(stale)
	c.recordSuccess(ctx, feed.ID)
	return result, nil
}

// TriggerSync runs one fetch -> decode -> merge cycle for a feed. A fetch
// failure sets the feed's status to error and writes nothing. If the
// context is cancelled mid-flight (feed disabled or deregistered), the
// fetched result is discarded without merging.
func (c *Controller) TriggerSync(ctx context.Context, feedID string) (*models.FeedSyncResult, error) {
	feed, err := c.feeds.GetByID(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, fmt.Errorf("feed not found: %s", feedID)
	}

	result := &models.FeedSyncResult{
		FeedID:     feed.ID,
		FeedName:   feed.Name,
		PropertyID: feed.PropertyID,
		SyncedAt:   time.Now().UTC(),
	}

	if err := c.feeds.UpdateSyncStatus(ctx, feed.ID, models.SyncStatusSyncing, nil); err != nil {
		log.Printf("Failed to update sync status for feed %s: %v", feed.ID, err)
	}

	document, err := c.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		c.recordFailure(ctx, feed.ID, err)
		result.Error = err
		return result, err
	}

	if err := ctx.Err(); err != nil {
		// Cancelled while the fetch was in flight; discard the document.
		c.recordFailure(context.WithoutCancel(ctx), feed.ID, err)
		result.Error = err
		return result, err
	}

	return c.importDocument(ctx, feed, document)
}

// SyncAllEnabled syncs every enabled provider feed. Failures are isolated:
// each feed's outcome is reported in its own result and syncing continues.
func (c *Controller) SyncAllEnabled(ctx context.Context) []models.FeedSyncResult {
	feeds, err := c.feeds.ListEnabled(ctx)
	if err != nil {
		log.Printf("Failed to list enabled feeds: %v", err)
		return nil
	}

	var results []models.FeedSyncResult
	for _, feed := range feeds {
		result, err := c.TriggerSync(ctx, feed.ID)
		if err != nil {
			log.Printf("Feed sync failed for %s (%s): %v", feed.ID, feed.Name, err)
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	return results
}

func (c *Controller) recordSuccess(ctx context.Context, feedID string) {
	if err := c.feeds.UpdateSyncStatus(ctx, feedID, models.SyncStatusSynced, nil); err != nil {
		log.Printf("Failed to update sync status for feed %s: %v", feedID, err)
	}
}

func (c *Controller) recordFailure(ctx context.Context, feedID string, cause error) {
	msg := cause.Error()
	if err := c.feeds.UpdateSyncStatus(ctx, feedID, models.SyncStatusError, &msg); err != nil {
		log.Printf("Failed to update sync status for feed %s: %v", feedID, err)
	}
}
