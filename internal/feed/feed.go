// Package feed keeps a per-account ordered cache of bookmarked status ids
// in Redis sorted sets, so the in:bookmark search directive never needs a
// relational scan. The relational store stays the single source of truth;
// the cache is warmed on miss and expires on a size-tiered schedule.
package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paon-social/searchd/internal/logger"
)

// Entry is one bookmarked status as loaded from the source of truth.
// BookmarkID is strictly increasing and doubles as the sort score.
type Entry struct {
	StatusID   int64
	BookmarkID int64
}

// Source loads an account's current bookmarks from the relational store,
// newest bookmark first, excluding deleted statuses.
type Source interface {
	BookmarkedStatusIDs(ctx context.Context, accountID int64) ([]Entry, error)
}

// Feed is the bookmark feed cache over a shared Redis store.
type Feed struct {
	client *redis.Client
	source Source
	logger logger.Logger
}

// New creates a bookmark feed cache.
func New(client *redis.Client, source Source, log logger.Logger) *Feed {
	return &Feed{
		client: client,
		source: source,
		logger: log,
	}
}

// GetAllStatusIDs returns every cached status id for the account, newest
// bookmark first. On a cache miss it warms the cache from the source of
// truth and re-reads. An account with zero bookmarks is never cached, so
// emptiness is re-checked against the source on every call.
func (f *Feed) GetAllStatusIDs(ctx context.Context, accountID int64) ([]int64, error) {
	ids, err := f.fromRedis(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return ids, nil
	}

	if err := f.Warm(ctx, accountID); err != nil {
		return nil, err
	}

	return f.fromRedis(ctx, accountID)
}

// Get performs a ranged read over the cached set in descending score
// order, capped at limit results. maxID and sinceID are exclusive bounds;
// zero means unbounded.
func (f *Feed) Get(ctx context.Context, accountID int64, limit int, maxID, sinceID int64) ([]int64, error) {
	key := Key(accountID)

	var cmd *redis.StringSliceCmd
	if maxID == 0 && sinceID == 0 {
		cmd = f.client.ZRevRange(ctx, key, 0, int64(limit)-1)
	} else {
		max := "+inf"
		if maxID != 0 {
			max = "(" + strconv.FormatInt(maxID, 10)
		}
		min := "-inf"
		if sinceID != 0 {
			min = "(" + strconv.FormatInt(sinceID, 10)
		}
		cmd = f.client.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
			Min:   min,
			Max:   max,
			Count: int64(limit),
		})
	}

	members, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmark feed range: %w", err)
	}
	return parseIDs(members)
}

// Warm bulk-loads the account's bookmarks into the cache. It is a no-op
// when the key already exists or the account has no bookmarks; population
// is all-or-nothing. Concurrent warmers race benignly: membership is
// idempotent, only the expiration write of the later warmer wins.
func (f *Feed) Warm(ctx context.Context, accountID int64) error {
	key := Key(accountID)

	exists, err := f.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check bookmark feed key: %w", err)
	}
	if exists > 0 {
		return nil
	}

	entries, err := f.source.BookmarkedStatusIDs(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load bookmarks from source: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	pipe := f.client.Pipeline()
	for _, entry := range entries {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(entry.BookmarkID),
			Member: entry.StatusID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to populate bookmark feed: %w", err)
	}

	ttl := TierTTL(len(entries))
	if err := f.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set bookmark feed expiration: %w", err)
	}

	f.logger.Debug("warmed bookmark feed",
		logger.Int64("account_id", accountID),
		logger.Int("count", len(entries)),
		logger.Duration("ttl", ttl))

	return nil
}

// Add upserts a bookmarked status with its bookmark id as score and
// refreshes the key's expiration against the new member count.
func (f *Feed) Add(ctx context.Context, accountID, bookmarkID, statusID int64) error {
	key := Key(accountID)

	if err := f.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(bookmarkID),
		Member: statusID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to bookmark feed: %w", err)
	}

	count, err := f.client.ZCard(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to read bookmark feed size: %w", err)
	}
	if err := f.client.Expire(ctx, key, TierTTL(int(count))).Err(); err != nil {
		return fmt.Errorf("failed to refresh bookmark feed expiration: %w", err)
	}

	return nil
}

// Remove deletes a status from the cached set. The expiration is left
// untouched.
func (f *Feed) Remove(ctx context.Context, accountID, statusID int64) error {
	if err := f.client.ZRem(ctx, Key(accountID), statusID).Err(); err != nil {
		return fmt.Errorf("failed to remove from bookmark feed: %w", err)
	}
	return nil
}

// Size returns the cached member count.
func (f *Feed) Size(ctx context.Context, accountID int64) (int64, error) {
	count, err := f.client.ZCard(ctx, Key(accountID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read bookmark feed size: %w", err)
	}
	return count, nil
}

// Clear drops the account's cached feed entirely.
func (f *Feed) Clear(ctx context.Context, accountID int64) error {
	if err := f.client.Del(ctx, Key(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to clear bookmark feed: %w", err)
	}
	return nil
}

// TierTTL returns the cache expiration for a feed of the given size.
// Small feeds stay warm for a long window; large feeds are bounded to
// cap memory cost for high-activity accounts.
func TierTTL(count int) time.Duration {
	switch {
	case count <= 100:
		return 30 * 24 * time.Hour
	case count <= 1000:
		return 7 * 24 * time.Hour
	case count <= 10000:
		return 24 * time.Hour
	default:
		return 6 * time.Hour
	}
}

func (f *Feed) fromRedis(ctx context.Context, accountID int64) ([]int64, error) {
	members, err := f.client.ZRevRange(ctx, Key(accountID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmark feed: %w", err)
	}
	return parseIDs(members)
}

func parseIDs(members []string) ([]int64, error) {
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt bookmark feed member %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
