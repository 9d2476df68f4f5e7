package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/nadavh/aptwatch/internal/model"
)

// Upsert inserts a saved item or overwrites its URL if the item already
// exists. Last write wins on url; a second record is never created.
func (s *SQLiteLedger) Upsert(ctx context.Context, itemID, url string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(itemID, "itemID"); err != nil {
		return err
	}
	if err := validateString(url, "url"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_items (item_id, url, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			url = excluded.url,
			updated_at = excluded.updated_at
	`, itemID, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert saved item %s: %w", itemID, err)
	}

	return nil
}

// Exists reports whether an item id is present in the ledger.
func (s *SQLiteLedger) Exists(ctx context.Context, itemID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(itemID, "itemID"); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM saved_items WHERE item_id = ?`, itemID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check saved item %s: %w", itemID, err)
	}

	return count > 0, nil
}

// All returns every ledger record. Order is unspecified but stable within
// a session.
func (s *SQLiteLedger) All(ctx context.Context) ([]model.SavedItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, url FROM saved_items ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.SavedItem
	for rows.Next() {
		var item model.SavedItem
		if err := rows.Scan(&item.ItemID, &item.URL); err != nil {
			return nil, fmt.Errorf("failed to scan saved item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved items: %w", err)
	}

	return items, nil
}
