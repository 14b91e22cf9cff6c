package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/paon-social/searchd/internal/domain"
)

// ResolveAccountID resolves a username to an account id. An empty domain
// means a local account (domain IS NULL in the accounts table).
func (s *Store) ResolveAccountID(ctx context.Context, username, accountDomain string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		SELECT id
		FROM accounts
		WHERE lower(username) = lower($1)
		  AND (($2 = '' AND domain IS NULL) OR lower(domain) = lower($2))`,
		username, accountDomain).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to resolve account: %w", err)
	}
	return id, nil
}

// Timezone looks up the configured timezone of a local account's user.
// Accounts without a user row or without a configured zone get UTC.
func (s *Store) Timezone(ctx context.Context, accountID int64) (*time.Location, error) {
	var name string
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(time_zone, '')
		FROM users
		WHERE account_id = $1`,
		accountID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.UTC, nil
		}
		return nil, fmt.Errorf("failed to look up timezone: %w", err)
	}
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		// A bad stored zone must not break date parsing.
		return time.UTC, nil
	}
	return loc, nil
}
