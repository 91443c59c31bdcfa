// Package models contains the domain models for the application.
package models

import (
	"time"
)

// CalendarFeed is a configured external calendar source for one property.
type CalendarFeed struct {
	ID              string     `json:"id"`
	PropertyID      string     `json:"property_id"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	SourceType      string     `json:"source_type"`
	Enabled         bool       `json:"enabled"`
	ClearOnDisable  bool       `json:"clear_on_disable"`
	SyncIntervalMin int        `json:"sync_interval_min"`
	SyncStatus      string     `json:"sync_status"`
	SyncError       *string    `json:"sync_error,omitempty"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	NextSyncAt      *time.Time `json:"next_sync_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Sync status constants.
const (
	SyncStatusIdle    = "idle"
	SyncStatusSyncing = "syncing"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// Source type constants. A recognized provider is synced on a schedule;
// a manual-import feed only receives documents uploaded by the host.
const (
	SourceTypeProvider     = "recognized-provider"
	SourceTypeManualImport = "manual-import"
)

// FeedSyncResult describes the outcome of one sync attempt.
type FeedSyncResult struct {
	FeedID        string    `json:"feed_id"`
	FeedName      string    `json:"feed_name"`
	PropertyID    string    `json:"property_id"`
	ImportedCount int       `json:"imported_count"`
	ClearedCount  int       `json:"cleared_count"`
	Error         error     `json:"-"`
	SyncedAt      time.Time `json:"synced_at"`
}
