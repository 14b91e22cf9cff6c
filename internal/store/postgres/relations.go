package postgres

import (
	"context"
	"fmt"

	"github.com/paon-social/searchd/internal/domain"
)

// RelationsMap preloads the viewer's relationship state toward the given
// authors and domains in four queries, so result post-filtering never
// needs a per-status round trip.
func (s *Store) RelationsMap(ctx context.Context, viewerID int64, accountIDs []int64, domains []string) (domain.Relations, error) {
	relations := domain.EmptyRelations()
	if len(accountIDs) == 0 {
		return relations, nil
	}

	blocking, err := s.idSet(ctx, `
		SELECT target_account_id FROM blocks
		WHERE account_id = $1 AND target_account_id = ANY($2)`,
		viewerID, accountIDs)
	if err != nil {
		return relations, fmt.Errorf("failed to load blocks: %w", err)
	}
	relations.Blocking = blocking

	blockedBy, err := s.idSet(ctx, `
		SELECT account_id FROM blocks
		WHERE target_account_id = $1 AND account_id = ANY($2)`,
		viewerID, accountIDs)
	if err != nil {
		return relations, fmt.Errorf("failed to load reverse blocks: %w", err)
	}
	relations.BlockedBy = blockedBy

	muting, err := s.idSet(ctx, `
		SELECT target_account_id FROM mutes
		WHERE account_id = $1 AND target_account_id = ANY($2)`,
		viewerID, accountIDs)
	if err != nil {
		return relations, fmt.Errorf("failed to load mutes: %w", err)
	}
	relations.Muting = muting

	if len(domains) > 0 {
		rows, err := s.db.Query(ctx, `
			SELECT domain FROM account_domain_blocks
			WHERE account_id = $1 AND domain = ANY($2)`,
			viewerID, domains)
		if err != nil {
			return relations, fmt.Errorf("failed to load domain blocks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var d string
			if err := rows.Scan(&d); err != nil {
				return relations, fmt.Errorf("failed to scan domain block: %w", err)
			}
			relations.DomainBlocking[d] = true
		}
		if err := rows.Err(); err != nil {
			return relations, fmt.Errorf("failed to read domain blocks: %w", err)
		}
	}

	return relations, nil
}

func (s *Store) idSet(ctx context.Context, query string, viewerID int64, accountIDs []int64) (map[int64]bool, error) {
	rows, err := s.db.Query(ctx, query, viewerID, accountIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}
