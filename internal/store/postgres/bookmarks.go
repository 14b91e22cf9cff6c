package postgres

import (
	"context"
	"fmt"

	"github.com/paon-social/searchd/internal/feed"
)

// BookmarkedStatusIDs loads the account's current bookmarks, newest
// first, skipping bookmarks whose status has been soft-deleted. This is
// the bulk load behind bookmark feed cache warming.
func (s *Store) BookmarkedStatusIDs(ctx context.Context, accountID int64) ([]feed.Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT b.status_id, b.id
		FROM bookmarks b
		JOIN statuses st ON st.id = b.status_id
		WHERE b.account_id = $1 AND st.deleted_at IS NULL
		ORDER BY b.id DESC`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var entries []feed.Entry
	for rows.Next() {
		var entry feed.Entry
		if err := rows.Scan(&entry.StatusID, &entry.BookmarkID); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookmark rows: %w", err)
	}

	return entries, nil
}
