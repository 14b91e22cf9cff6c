package indexer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paon-social/searchd/internal/domain"
	"github.com/paon-social/searchd/internal/logger"
	"github.com/paon-social/searchd/internal/search"
)

// QueueKey is the Redis set holding status ids awaiting (re)indexing.
// Producers add ids whenever a status is created, edited or deleted; the
// indexer drains the set and reconciles each id against the backend.
const QueueKey = "searchd:queue:statuses"

// StatusSource loads statuses from the source of truth.
type StatusSource interface {
	StatusesByIDs(ctx context.Context, ids []int64) ([]domain.Status, error)
	StatusesForIndexing(ctx context.Context, afterID int64, limit int) ([]domain.Status, error)
}

// Indexer drains the status queue on an interval and pushes the changes
// into the search backend. Ids whose status is gone or no longer
// searchable are deleted from the index instead.
type Indexer struct {
	client        *redis.Client
	source        StatusSource
	backend       search.Backend
	logger        logger.Logger
	interval      time.Duration
	batchSize     int
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// New creates a queue-draining indexer.
func New(
	client *redis.Client,
	source StatusSource,
	backend search.Backend,
	log logger.Logger,
	interval time.Duration,
	batchSize int,
	manualTrigger chan struct{},
) *Indexer {
	return &Indexer{
		client:        client,
		source:        source,
		backend:       backend,
		logger:        log,
		interval:      interval,
		batchSize:     batchSize,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic drain loop.
func (ix *Indexer) Start(ctx context.Context) error {
	// Drain whatever accumulated while we were down
	if err := ix.Drain(ctx); err != nil {
		return fmt.Errorf("initial queue drain failed: %w", err)
	}

	ticker := time.NewTicker(ix.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ix.Drain(ctx); err != nil {
					ix.logger.Error("failed to drain indexing queue",
						logger.Error(err))
				}
			case <-ix.manualTrigger:
				ix.logger.Info("manual queue drain triggered")
				if err := ix.Drain(ctx); err != nil {
					ix.logger.Error("failed to drain indexing queue",
						logger.Error(err))
				}
			case <-ix.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the drain loop.
func (ix *Indexer) Stop() {
	close(ix.stopCh)
}

// Enqueue marks status ids as needing reindexing.
func (ix *Indexer) Enqueue(ctx context.Context, statusIDs ...int64) error {
	members := make([]interface{}, len(statusIDs))
	for i, id := range statusIDs {
		members[i] = strconv.FormatInt(id, 10)
	}
	if err := ix.client.SAdd(ctx, QueueKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to enqueue status ids: %w", err)
	}
	return nil
}

// Drain pops batches off the queue until it is empty, reconciling each
// batch against the backend.
func (ix *Indexer) Drain(ctx context.Context) error {
	total := 0
	for {
		popped, err := ix.client.SPopN(ctx, QueueKey, int64(ix.batchSize)).Result()
		if err != nil {
			return fmt.Errorf("failed to pop from indexing queue: %w", err)
		}
		if len(popped) == 0 {
			break
		}

		ids := make([]int64, 0, len(popped))
		for _, raw := range popped {
			id, perr := strconv.ParseInt(raw, 10, 64)
			if perr != nil {
				ix.logger.Warn("dropping malformed queue entry",
					logger.String("entry", raw))
				continue
			}
			ids = append(ids, id)
		}

		if err := ix.reconcile(ctx, ids); err != nil {
			return err
		}
		total += len(ids)
	}

	if total > 0 {
		ix.logger.Info("drained indexing queue",
			logger.Int("statuses", total))
	}
	return nil
}

// reconcile indexes the searchable statuses among ids and deletes the
// rest (gone or no longer searchable) from the backend.
func (ix *Indexer) reconcile(ctx context.Context, ids []int64) error {
	statuses, err := ix.source.StatusesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load statuses for indexing: %w", err)
	}

	found := make(map[int64]bool, len(statuses))
	var indexable []domain.Status
	for _, status := range statuses {
		found[status.ID] = true
		if status.Searchable() {
			indexable = append(indexable, status)
		} else {
			if derr := ix.backend.DeleteStatus(ctx, status.ID); derr != nil {
				return fmt.Errorf("failed to delete status %d from index: %w", status.ID, derr)
			}
		}
	}

	for _, id := range ids {
		if !found[id] {
			if derr := ix.backend.DeleteStatus(ctx, id); derr != nil {
				return fmt.Errorf("failed to delete status %d from index: %w", id, derr)
			}
		}
	}

	if len(indexable) > 0 {
		if err := ix.backend.IndexStatuses(ctx, indexable); err != nil {
			return fmt.Errorf("failed to index statuses: %w", err)
		}
	}
	return nil
}

// Deploy walks the whole status table and indexes every searchable
// status, batch by batch. Meant for first-time setup and schema changes.
func (ix *Indexer) Deploy(ctx context.Context) error {
	ix.logger.Info("starting full reindex")

	var afterID int64
	total := 0
	for {
		statuses, err := ix.source.StatusesForIndexing(ctx, afterID, ix.batchSize)
		if err != nil {
			return fmt.Errorf("failed to load status batch after id %d: %w", afterID, err)
		}
		if len(statuses) == 0 {
			break
		}
		afterID = statuses[len(statuses)-1].ID

		var indexable []domain.Status
		for _, status := range statuses {
			if status.Searchable() {
				indexable = append(indexable, status)
			}
		}
		if len(indexable) > 0 {
			if err := ix.backend.IndexStatuses(ctx, indexable); err != nil {
				return fmt.Errorf("failed to index batch ending at id %d: %w", afterID, err)
			}
			total += len(indexable)
		}
	}

	ix.logger.Info("full reindex finished",
		logger.Int("statuses", total))
	return nil
}
