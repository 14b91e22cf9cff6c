// Package search holds the external search backend abstraction and the
// orchestration service that drives parse, transform, backend call, and
// visibility post-filtering.
package search

import (
	"context"

	"github.com/paon-social/searchd/internal/domain"
)

// Request is one backend search call.
type Request struct {
	Query  string
	Filter string
	Sort   []string
	Limit  int
	Offset int
}

// Backend is the external full-text search engine. Implementations must
// be safe for concurrent use.
type Backend interface {
	Search(ctx context.Context, req Request) ([]domain.Status, error)
	IndexStatuses(ctx context.Context, statuses []domain.Status) error
	DeleteStatus(ctx context.Context, id int64) error
}

// NoopBackend is wired when search is disabled by configuration: searches
// find nothing and indexing calls are inert, so callers never need to
// check a feature flag.
type NoopBackend struct{}

// NewNoopBackend creates a disabled backend.
func NewNoopBackend() *NoopBackend {
	return &NoopBackend{}
}

func (*NoopBackend) Search(context.Context, Request) ([]domain.Status, error) {
	return nil, nil
}

func (*NoopBackend) IndexStatuses(context.Context, []domain.Status) error {
	return nil
}

func (*NoopBackend) DeleteStatus(context.Context, int64) error {
	return nil
}
