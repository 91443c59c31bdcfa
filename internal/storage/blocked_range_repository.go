package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rental-availability/backend/internal/availability"
)

// BlockedRangeRepository persists compressed blocked ranges per property.
// Rows are {start_date, end_date, source} triples, the engine's
// serialization unit; the in-memory day map is rebuilt by expanding them.
type BlockedRangeRepository struct {
	BaseRepository
}

// NewBlockedRangeRepository creates a new blocked range repository.
func NewBlockedRangeRepository(db *DB) *BlockedRangeRepository {
	return &BlockedRangeRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ListForProperty retrieves the property's persisted ranges ordered by
// start date.
func (r *BlockedRangeRepository) ListForProperty(ctx context.Context, propertyID string) ([]availability.BlockedRange, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT start_date, end_date, source
		FROM blocked_ranges
		WHERE property_id = ?
		ORDER BY start_date
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("querying blocked ranges: %w", err)
	}
	defer rows.Close()

	var ranges []availability.BlockedRange
	for rows.Next() {
		var startStr, endStr, sourceStr string
		if err := rows.Scan(&startStr, &endStr, &sourceStr); err != nil {
			return nil, fmt.Errorf("scanning blocked range: %w", err)
		}

		blocked, err := rowToRange(startStr, endStr, sourceStr)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, blocked)
	}

	return ranges, rows.Err()
}

// ReplaceForProperty atomically replaces the property's persisted ranges.
func (r *BlockedRangeRepository) ReplaceForProperty(ctx context.Context, propertyID string, ranges []availability.BlockedRange) error {
	return r.Transaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM blocked_ranges WHERE property_id = ?", propertyID)
		if err != nil {
			return fmt.Errorf("deleting blocked ranges: %w", err)
		}

		for _, blocked := range ranges {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO blocked_ranges (id, property_id, start_date, end_date, source)
				VALUES (?, ?, ?, ?, ?)
			`, GenerateID(), propertyID, blocked.Start.String(), blocked.End.String(), blocked.Source.String())
			if err != nil {
				return fmt.Errorf("inserting blocked range: %w", err)
			}
		}

		return nil
	})
}

// CountForProperty returns the number of persisted ranges for a property.
func (r *BlockedRangeRepository) CountForProperty(ctx context.Context, propertyID string) (int, error) {
	var count int
	err := r.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM blocked_ranges WHERE property_id = ?", propertyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting blocked ranges: %w", err)
	}
	return count, nil
}

func rowToRange(startStr, endStr, sourceStr string) (availability.BlockedRange, error) {
	start, err := availability.ParseDay(startStr)
	if err != nil {
		return availability.BlockedRange{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := availability.ParseDay(endStr)
	if err != nil {
		return availability.BlockedRange{}, fmt.Errorf("invalid end date: %w", err)
	}
	source, err := availability.ParseSourceTag(sourceStr)
	if err != nil {
		return availability.BlockedRange{}, fmt.Errorf("invalid source: %w", err)
	}
	return availability.BlockedRange{Start: start, End: end, Source: source}, nil
}
