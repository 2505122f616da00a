package db

import (
	"context"
	"fmt"
	"time"
)

// GetSettings returns every stored setting keyed by name.
func (s *Store) GetSettings(ctx context.Context) (map[string]string, error) {
	var rows []Setting
	if err := s.db.SelectContext(ctx, &rows, "SELECT key, value, updated_at FROM settings"); err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// UpsertSettings writes all values in one transaction.
func (s *Store) UpsertSettings(ctx context.Context, values map[string]string) (err error) {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for key, value := range values {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, now); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}
