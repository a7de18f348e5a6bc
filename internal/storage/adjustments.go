package db

import (
	"context"
	"fmt"
)

// AddManualAdjustment records an operator-issued delta for a target. A nil
// chatID applies the delta globally. Deltas can be negative; the summary
// clamps the final counters at zero.
func (db *DB) AddManualAdjustment(ctx context.Context, target string, chatID *int64, positiveDelta, negativeDelta int64, note string, createdBy int64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO manual_adjustments (target, chat_id, positive_delta, negative_delta, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, target, chatID, positiveDelta, negativeDelta, toText(note), createdBy)
	if err != nil {
		return fmt.Errorf("add manual adjustment: %w", err)
	}

	return nil
}
