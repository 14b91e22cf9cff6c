package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/paon-social/searchd/internal/domain"
)

// statusColumns assembles the index document fields from the relational
// schema. Media flags come from the attachment type enum (0 image,
// 1 gifv, 2 video), link/embed from the preview card type enum
// (0 link, 2 video, 3 rich).
const statusColumns = `
	s.id,
	s.account_id,
	COALESCE(a.domain, ''),
	s.text,
	COALESCE(s.language, ''),
	s.visibility,
	s.sensitive,
	s.in_reply_to_id IS NOT NULL,
	EXISTS (SELECT 1 FROM media_attachments m WHERE m.status_id = s.id),
	EXISTS (SELECT 1 FROM media_attachments m WHERE m.status_id = s.id AND m.type = 0),
	EXISTS (SELECT 1 FROM media_attachments m WHERE m.status_id = s.id AND m.type IN (1, 2)),
	s.poll_id IS NOT NULL,
	EXISTS (SELECT 1 FROM preview_cards_statuses pcs WHERE pcs.status_id = s.id),
	EXISTS (SELECT 1 FROM preview_cards_statuses pcs
	        JOIN preview_cards pc ON pc.id = pcs.preview_card_id
	        WHERE pcs.status_id = s.id AND pc.type IN (2, 3)),
	s.created_at,
	COALESCE(ss.favourites_count, 0),
	COALESCE(ss.reblogs_count, 0),
	COALESCE(ss.replies_count, 0),
	(SELECT COALESCE(array_agg(t.name), '{}')
	 FROM statuses_tags st
	 JOIN tags t ON t.id = st.tag_id
	 WHERE st.status_id = s.id)`

const statusFrom = `
	FROM statuses s
	JOIN accounts a ON a.id = s.account_id
	LEFT JOIN status_stats ss ON ss.status_id = s.id`

// StatusesByIDs loads the given statuses in no particular order. Missing
// ids are silently absent from the result.
func (s *Store) StatusesByIDs(ctx context.Context, ids []int64) ([]domain.Status, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+statusColumns+statusFrom+`
		WHERE s.id = ANY($1) AND s.deleted_at IS NULL`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer rows.Close()

	return scanStatuses(rows)
}

// StatusesForIndexing walks the status table in id order for bulk
// reindexing: up to limit rows with id greater than afterID.
func (s *Store) StatusesForIndexing(ctx context.Context, afterID int64, limit int) ([]domain.Status, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+statusColumns+statusFrom+`
		WHERE s.id > $1 AND s.deleted_at IS NULL
		ORDER BY s.id ASC
		LIMIT $2`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses for indexing: %w", err)
	}
	defer rows.Close()

	return scanStatuses(rows)
}

func scanStatuses(rows pgx.Rows) ([]domain.Status, error) {
	var statuses []domain.Status
	for rows.Next() {
		var (
			status     domain.Status
			visibility int
		)
		if err := rows.Scan(
			&status.ID,
			&status.AccountID,
			&status.AccountDomain,
			&status.Text,
			&status.Language,
			&visibility,
			&status.Sensitive,
			&status.IsReply,
			&status.HasMedia,
			&status.HasImage,
			&status.HasVideo,
			&status.HasPoll,
			&status.HasLink,
			&status.HasEmbed,
			&status.CreatedAt,
			&status.FavouritesCount,
			&status.ReblogsCount,
			&status.RepliesCount,
			&status.Tags,
		); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		status.Visibility = domain.VisibilityFromInt(visibility)
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status rows: %w", err)
	}
	return statuses, nil
}
