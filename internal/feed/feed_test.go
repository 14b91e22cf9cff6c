package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paon-social/searchd/internal/logger"
)

type fakeSource struct {
	entries map[int64][]Entry
	calls   int
}

func (s *fakeSource) BookmarkedStatusIDs(_ context.Context, accountID int64) ([]Entry, error) {
	s.calls++
	return s.entries[accountID], nil
}

func newTestFeed(t *testing.T, source *fakeSource) (*Feed, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, source, logger.Nop()), mr
}

func TestGetAllStatusIDsWarmsOnMiss(t *testing.T) {
	source := &fakeSource{entries: map[int64][]Entry{
		42: {{StatusID: 20, BookmarkID: 200}, {StatusID: 10, BookmarkID: 100}},
	}}
	f, _ := newTestFeed(t, source)
	ctx := context.Background()

	ids, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 10}, ids)
	assert.Equal(t, 1, source.calls)

	// Second read hits the cache, source untouched.
	again, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, ids, again)
	assert.Equal(t, 1, source.calls)
}

func TestGetAllStatusIDsEmptyAccountNeverCached(t *testing.T) {
	source := &fakeSource{entries: map[int64][]Entry{}}
	f, mr := newTestFeed(t, source)
	ctx := context.Background()

	ids, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, mr.Exists(Key(42)), "empty feed must not be cached")

	// The next call retries the source instead of trusting a false hit.
	_, err = f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	// First bookmark shows up immediately.
	source.entries[42] = []Entry{{StatusID: 10, BookmarkID: 100}}
	ids, err = f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids)
}

func TestAddPutsNewestFirst(t *testing.T) {
	source := &fakeSource{entries: map[int64][]Entry{
		42: {{StatusID: 20, BookmarkID: 200}, {StatusID: 10, BookmarkID: 100}},
	}}
	f, _ := newTestFeed(t, source)
	ctx := context.Background()

	_, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, f.Add(ctx, 42, 300, 30))

	ids, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 20, 10}, ids)
}

func TestRemoveDeletesMember(t *testing.T) {
	source := &fakeSource{entries: map[int64][]Entry{
		42: {{StatusID: 20, BookmarkID: 200}, {StatusID: 10, BookmarkID: 100}},
	}}
	f, _ := newTestFeed(t, source)
	ctx := context.Background()

	_, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, f.Remove(ctx, 42, 20))

	ids, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids)

	size, err := f.Size(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestGetRangedBounds(t *testing.T) {
	source := &fakeSource{entries: map[int64][]Entry{
		42: {
			{StatusID: 30, BookmarkID: 300},
			{StatusID: 20, BookmarkID: 200},
			{StatusID: 10, BookmarkID: 100},
		},
	}}
	f, _ := newTestFeed(t, source)
	ctx := context.Background()

	_, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)

	tests := []struct {
		name    string
		limit   int
		maxID   int64
		sinceID int64
		want    []int64
	}{
		{"no bounds", 10, 0, 0, []int64{30, 20, 10}},
		{"limit caps results", 2, 0, 0, []int64{30, 20}},
		{"max bound is exclusive", 10, 300, 0, []int64{20, 10}},
		{"since bound is exclusive", 10, 0, 100, []int64{30, 20}},
		{"both bounds", 10, 300, 100, []int64{20}},
		{"bounds with limit", 1, 300, 0, []int64{20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Get(ctx, 42, tt.limit, tt.maxID, tt.sinceID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWarmSetsTieredTTL(t *testing.T) {
	entries := make([]Entry, 150)
	for i := range entries {
		entries[i] = Entry{StatusID: int64(i + 1), BookmarkID: int64(1000 + i)}
	}
	source := &fakeSource{entries: map[int64][]Entry{42: entries}}
	f, mr := newTestFeed(t, source)

	require.NoError(t, f.Warm(context.Background(), 42))

	assert.Equal(t, 7*24*time.Hour, mr.TTL(Key(42)))
}

func TestAddRefreshesTTLButRemoveDoesNot(t *testing.T) {
	source := &fakeSource{entries: map[int64][]Entry{
		42: {{StatusID: 15, BookmarkID: 150}, {StatusID: 10, BookmarkID: 100}},
	}}
	f, mr := newTestFeed(t, source)
	ctx := context.Background()

	_, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)

	mr.SetTTL(Key(42), time.Minute)

	require.NoError(t, f.Remove(ctx, 42, 10))
	assert.Equal(t, time.Minute, mr.TTL(Key(42)), "Remove must not refresh expiration")

	require.NoError(t, f.Add(ctx, 42, 200, 20))
	assert.Equal(t, 30*24*time.Hour, mr.TTL(Key(42)), "Add must refresh expiration")
}

func TestClear(t *testing.T) {
	source := &fakeSource{entries: map[int64][]Entry{
		42: {{StatusID: 10, BookmarkID: 100}},
	}}
	f, mr := newTestFeed(t, source)
	ctx := context.Background()

	_, err := f.GetAllStatusIDs(ctx, 42)
	require.NoError(t, err)
	require.True(t, mr.Exists(Key(42)))

	require.NoError(t, f.Clear(ctx, 42))
	assert.False(t, mr.Exists(Key(42)))
}

func TestTierTTL(t *testing.T) {
	tests := []struct {
		count int
		want  time.Duration
	}{
		{0, 30 * 24 * time.Hour},
		{100, 30 * 24 * time.Hour},
		{101, 7 * 24 * time.Hour},
		{1000, 7 * 24 * time.Hour},
		{1001, 24 * time.Hour},
		{10000, 24 * time.Hour},
		{10001, 6 * time.Hour},
	}

	for _, tt := range tests {
		if got := TierTTL(tt.count); got != tt.want {
			t.Errorf("TierTTL(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}
