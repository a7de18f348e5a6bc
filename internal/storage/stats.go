package db

import (
	"context"
	"fmt"
	"time"
)

// Statistics is an aggregate snapshot over the whole dataset.
type Statistics struct {
	ActiveGroups    int64
	TotalGroups     int64
	TotalEntries    int64
	PositiveEntries int64
	NegativeEntries int64
	DistinctTargets int64
	TotalUsers      int64
	RequestsToday   int64
}

// FetchStatistics gathers the admin dashboard counters in one round trip.
func (db *DB) FetchStatistics(ctx context.Context) (*Statistics, error) {
	midnight := time.Now().UTC().Truncate(24 * time.Hour)

	row := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM groups WHERE is_active),
			(SELECT COUNT(*) FROM groups),
			(SELECT COUNT(*) FROM reputation_entries),
			(SELECT COUNT(*) FROM reputation_entries WHERE sentiment = 'positive'),
			(SELECT COUNT(*) FROM reputation_entries WHERE sentiment = 'negative'),
			(SELECT COUNT(DISTINCT target) FROM reputation_entries),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM requests_log WHERE created_at >= $1)
	`, toTimestamptz(midnight))

	var stats Statistics

	err := row.Scan(
		&stats.ActiveGroups,
		&stats.TotalGroups,
		&stats.TotalEntries,
		&stats.PositiveEntries,
		&stats.NegativeEntries,
		&stats.DistinctTargets,
		&stats.TotalUsers,
		&stats.RequestsToday,
	)
	if err != nil {
		return nil, fmt.Errorf("scan statistics: %w", err)
	}

	return &stats, nil
}
