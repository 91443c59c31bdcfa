package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rental-availability/backend/internal/storage/models"
)

// FeedRepository provides data access for calendar feed configurations.
type FeedRepository struct {
	BaseRepository
}

// NewFeedRepository creates a new feed repository.
func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const feedColumns = `
	id, property_id, name, url, source_type, enabled, clear_on_disable,
	sync_interval_min, sync_status, sync_error, last_sync_at, created_at, updated_at
`

// Create inserts a new feed configuration.
func (r *FeedRepository) Create(ctx context.Context, feed *models.CalendarFeed) error {
	feed.ID = GenerateID()
	feed.CreatedAt = r.Now()
	feed.UpdatedAt = r.Now()
	feed.SyncStatus = models.SyncStatusIdle

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO calendar_feeds (
			id, property_id, name, url, source_type, enabled, clear_on_disable,
			sync_interval_min, sync_status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		feed.ID, feed.PropertyID, feed.Name, feed.URL, feed.SourceType,
		feed.Enabled, feed.ClearOnDisable, feed.SyncIntervalMin,
		feed.SyncStatus, feed.CreatedAt, feed.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting feed: %w", err)
	}

	return nil
}

func scanFeed(row interface{ Scan(...any) error }) (*models.CalendarFeed, error) {
	feed := &models.CalendarFeed{}
	err := row.Scan(
		&feed.ID, &feed.PropertyID, &feed.Name, &feed.URL, &feed.SourceType,
		&feed.Enabled, &feed.ClearOnDisable, &feed.SyncIntervalMin,
		&feed.SyncStatus, &feed.SyncError, &feed.LastSyncAt,
		&feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// GetByID retrieves a feed by its ID. Returns nil when not found.
func (r *FeedRepository) GetByID(ctx context.Context, id string) (*models.CalendarFeed, error) {
	row := r.DB().QueryRowContext(ctx,
		"SELECT "+feedColumns+" FROM calendar_feeds WHERE id = ?", id)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	return feed, nil
}

func (r *FeedRepository) queryFeeds(ctx context.Context, query string, args ...any) ([]models.CalendarFeed, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feeds: %w", err)
	}
	defer rows.Close()

	var feeds []models.CalendarFeed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	return feeds, rows.Err()
}

// ListForProperty retrieves all feeds configured for a property.
func (r *FeedRepository) ListForProperty(ctx context.Context, propertyID string) ([]models.CalendarFeed, error) {
	return r.queryFeeds(ctx,
		"SELECT "+feedColumns+" FROM calendar_feeds WHERE property_id = ? ORDER BY name",
		propertyID)
}

// ListEnabled retrieves all enabled provider feeds, least recently synced
// first.
func (r *FeedRepository) ListEnabled(ctx context.Context) ([]models.CalendarFeed, error) {
	return r.queryFeeds(ctx, `
		SELECT `+feedColumns+` FROM calendar_feeds
		WHERE enabled = 1 AND source_type = ?
		ORDER BY last_sync_at ASC NULLS FIRST
	`, models.SourceTypeProvider)
}

// Update updates a feed's configuration fields.
func (r *FeedRepository) Update(ctx context.Context, feed *models.CalendarFeed) error {
	feed.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE calendar_feeds SET
			name = ?, url = ?, source_type = ?, enabled = ?,
			clear_on_disable = ?, sync_interval_min = ?, updated_at = ?
		WHERE id = ?
	`,
		feed.Name, feed.URL, feed.SourceType, feed.Enabled,
		feed.ClearOnDisable, feed.SyncIntervalMin, feed.UpdatedAt, feed.ID,
	)

	if err != nil {
		return fmt.Errorf("updating feed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("feed not found: %s", feed.ID)
	}

	return nil
}

// SetEnabled flips the feed's enabled flag.
func (r *FeedRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE calendar_feeds SET enabled = ?, updated_at = ? WHERE id = ?
	`, enabled, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating feed enabled flag: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("feed not found: %s", id)
	}

	return nil
}

// UpdateSyncStatus records the outcome of a sync attempt. LastSyncAt is
// only advanced on a successful sync.
func (r *FeedRepository) UpdateSyncStatus(ctx context.Context, id string, status string, syncError *string) error {
	now := time.Now().UTC()
	var lastSyncAt *time.Time
	if status == models.SyncStatusSynced {
		lastSyncAt = &now
	}

	_, err := r.DB().ExecContext(ctx, `
		UPDATE calendar_feeds SET
			sync_status = ?, sync_error = ?, last_sync_at = COALESCE(?, last_sync_at), updated_at = ?
		WHERE id = ?
	`, status, syncError, lastSyncAt, now, id)

	if err != nil {
		return fmt.Errorf("updating sync status: %w", err)
	}

	return nil
}

// Delete removes a feed by ID.
func (r *FeedRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM calendar_feeds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting feed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("feed not found: %s", id)
	}

	return nil
}
