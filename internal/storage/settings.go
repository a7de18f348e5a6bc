package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const pausedSettingKey = "paused"

// SaveSetting stores a JSON-serializable value under a key, replacing any
// previous value.
func (db *DB) SaveSetting(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal setting %q: %w", key, err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, payload)
	if err != nil {
		return fmt.Errorf("save setting %q: %w", key, err)
	}

	return nil
}

// GetSetting loads a setting into out. Returns false when the key is absent.
func (db *DB) GetSetting(ctx context.Context, key string, out any) (bool, error) {
	var payload []byte

	err := db.Pool.QueryRow(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("get setting %q: %w", key, err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("unmarshal setting %q: %w", key, err)
	}

	return true, nil
}

// SetPaused toggles the global pause flag. While paused the bot keeps
// capturing group messages but stops answering lookups.
func (db *DB) SetPaused(ctx context.Context, paused bool) error {
	return db.SaveSetting(ctx, pausedSettingKey, paused)
}

// IsPaused reads the global pause flag. Absence means not paused.
func (db *DB) IsPaused(ctx context.Context) (bool, error) {
	var paused bool

	if _, err := db.GetSetting(ctx, pausedSettingKey, &paused); err != nil {
		return false, err
	}

	return paused, nil
}
