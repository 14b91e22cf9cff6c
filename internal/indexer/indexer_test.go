package indexer

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paon-social/searchd/internal/domain"
	"github.com/paon-social/searchd/internal/logger"
	"github.com/paon-social/searchd/internal/search"
)

type fakeSource struct {
	statuses map[int64]domain.Status
}

func (s *fakeSource) StatusesByIDs(_ context.Context, ids []int64) ([]domain.Status, error) {
	var out []domain.Status
	for _, id := range ids {
		if st, ok := s.statuses[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fakeSource) StatusesForIndexing(_ context.Context, afterID int64, limit int) ([]domain.Status, error) {
	var out []domain.Status
	for id := afterID + 1; len(out) < limit && id <= 100; id++ {
		if st, ok := s.statuses[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

type recordingBackend struct {
	indexed []int64
	deleted []int64
}

func (b *recordingBackend) Search(context.Context, search.Request) ([]domain.Status, error) {
	return nil, nil
}

func (b *recordingBackend) IndexStatuses(_ context.Context, statuses []domain.Status) error {
	for _, st := range statuses {
		b.indexed = append(b.indexed, st.ID)
	}
	return nil
}

func (b *recordingBackend) DeleteStatus(_ context.Context, id int64) error {
	b.deleted = append(b.deleted, id)
	return nil
}

func newTestIndexer(t *testing.T, source *fakeSource, backend *recordingBackend) (*Indexer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ix := New(client, source, backend, logger.Nop(), time.Minute, 10, make(chan struct{}))
	return ix, mr
}

func TestDrainIndexesSearchableStatuses(t *testing.T) {
	source := &fakeSource{statuses: map[int64]domain.Status{
		1: {ID: 1, Visibility: domain.VisibilityPublic},
		2: {ID: 2, Visibility: domain.VisibilityUnlisted},
	}}
	backend := &recordingBackend{}
	ix, mr := newTestIndexer(t, source, backend)
	ctx := context.Background()

	require.NoError(t, ix.Enqueue(ctx, 1, 2))
	require.NoError(t, ix.Drain(ctx))

	assert.ElementsMatch(t, []int64{1, 2}, backend.indexed)
	assert.Empty(t, backend.deleted)
	assert.False(t, mr.Exists(QueueKey), "queue must be empty after drain")
}

func TestDrainDeletesUnsearchableAndMissing(t *testing.T) {
	source := &fakeSource{statuses: map[int64]domain.Status{
		1: {ID: 1, Visibility: domain.VisibilityPublic},
		2: {ID: 2, Visibility: domain.VisibilityPrivate},
	}}
	backend := &recordingBackend{}
	ix, _ := newTestIndexer(t, source, backend)
	ctx := context.Background()

	// 3 has no row at all, such as a deleted status
	require.NoError(t, ix.Enqueue(ctx, 1, 2, 3))
	require.NoError(t, ix.Drain(ctx))

	assert.ElementsMatch(t, []int64{1}, backend.indexed)
	assert.ElementsMatch(t, []int64{2, 3}, backend.deleted)
}

func TestDrainEmptyQueueIsANoop(t *testing.T) {
	backend := &recordingBackend{}
	ix, _ := newTestIndexer(t, &fakeSource{}, backend)

	require.NoError(t, ix.Drain(context.Background()))

	assert.Empty(t, backend.indexed)
	assert.Empty(t, backend.deleted)
}

func TestDrainSkipsMalformedEntries(t *testing.T) {
	source := &fakeSource{statuses: map[int64]domain.Status{
		1: {ID: 1, Visibility: domain.VisibilityPublic},
	}}
	backend := &recordingBackend{}
	ix, mr := newTestIndexer(t, source, backend)

	mr.SAdd(QueueKey, "1", "not-a-number")
	require.NoError(t, ix.Drain(context.Background()))

	assert.ElementsMatch(t, []int64{1}, backend.indexed)
	assert.Empty(t, backend.deleted)
}

func TestDeployWalksAllBatches(t *testing.T) {
	statuses := map[int64]domain.Status{}
	for id := int64(1); id <= 25; id++ {
		vis := domain.VisibilityPublic
		if id%5 == 0 {
			vis = domain.VisibilityDirect
		}
		statuses[id] = domain.Status{ID: id, Visibility: vis}
	}
	source := &fakeSource{statuses: statuses}
	backend := &recordingBackend{}
	ix, _ := newTestIndexer(t, source, backend)

	require.NoError(t, ix.Deploy(context.Background()))

	assert.Len(t, backend.indexed, 20, "every fifth status is direct and skipped")
	assert.NotContains(t, backend.indexed, int64(5))
	assert.Contains(t, backend.indexed, int64(1))
	assert.Contains(t, backend.indexed, int64(24))
}
