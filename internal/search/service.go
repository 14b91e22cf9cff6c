package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/paon-social/searchd/internal/domain"
	"github.com/paon-social/searchd/internal/logger"
	"github.com/paon-social/searchd/internal/query"
)

const (
	// DefaultLimit applies when the caller does not specify a page size.
	DefaultLimit = 20
	// MaxLimit caps the page size regardless of what the caller asks for.
	MaxLimit = 40
)

// Options are the caller-supplied paging and scoping knobs, all optional
// (zero means absent).
type Options struct {
	Limit     int
	Offset    int
	AccountID int64
	MinID     int64
	MaxID     int64
}

// RelationsProvider preloads the viewer's relationship state for the
// visibility post-filter.
type RelationsProvider interface {
	RelationsMap(ctx context.Context, viewerID int64, accountIDs []int64, domains []string) (domain.Relations, error)
}

// Service drives a status search end to end: parse, transform, backend
// call, post-filter. Parse and transform failures fall back to a plain
// text search; backend failures degrade to an empty result list. The
// caller never sees an error.
type Service struct {
	backend     Backend
	transformer *query.Transformer
	relations   RelationsProvider
	logger      logger.Logger
}

// NewService builds the orchestration service.
func NewService(backend Backend, transformer *query.Transformer, relations RelationsProvider, log logger.Logger) *Service {
	return &Service{
		backend:     backend,
		transformer: transformer,
		relations:   relations,
		logger:      log,
	}
}

// Search runs rawText for the given viewer (nil for anonymous).
func (s *Service) Search(ctx context.Context, rawText string, viewer *domain.Account, opts Options) []domain.Status {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil
	}

	descriptor := s.describe(ctx, rawText, viewer)

	req := Request{
		Query:  descriptor.Query,
		Filter: mergeFilters(descriptor.Filter, callerFilters(opts)),
		Sort:   descriptor.Sort,
		Limit:  normalizeLimit(opts.Limit),
		Offset: opts.Offset,
	}

	results, err := s.backend.Search(ctx, req)
	if err != nil {
		s.logger.Error("search backend call failed",
			logger.String("query", rawText),
			logger.Error(err))
		return nil
	}

	return s.postFilter(ctx, results, viewer)
}

// describe parses and transforms the raw text, falling back wholesale to
// a plain text search with the default visibility scope when either pass
// fails.
func (s *Service) describe(ctx context.Context, rawText string, viewer *domain.Account) *query.Descriptor {
	clauses, err := query.Parse(rawText)
	if err == nil {
		descriptor, terr := s.transformer.Apply(ctx, clauses, viewer)
		if terr == nil {
			return descriptor
		}
		err = terr
	}

	s.logger.Debug("query fell back to plain text search",
		logger.String("query", rawText),
		logger.Error(err))

	return &query.Descriptor{
		Query:  rawText,
		Filter: query.DefaultVisibilityFilter,
		Sort:   query.DefaultSort(),
	}
}

// postFilter drops results the viewer must not see, preserving backend
// order. With no viewer the index's own visibility rules are all there
// is to enforce.
func (s *Service) postFilter(ctx context.Context, results []domain.Status, viewer *domain.Account) []domain.Status {
	if viewer == nil || len(results) == 0 {
		return results
	}

	accountIDs, domains := authorsOf(results)
	relations, err := s.relations.RelationsMap(ctx, viewer.ID, accountIDs, domains)
	if err != nil {
		// Failing open would leak blocked content; degrade to empty
		// like any other collaborator failure.
		s.logger.Error("failed to load viewer relations",
			logger.Int64("viewer_id", viewer.ID),
			logger.Error(err))
		return nil
	}

	filter := &domain.StatusFilter{ViewerID: viewer.ID, Relations: relations}
	kept := results[:0]
	for _, status := range results {
		if !filter.Filtered(&status) {
			kept = append(kept, status)
		}
	}
	return kept
}

func authorsOf(results []domain.Status) ([]int64, []string) {
	idSeen := map[int64]bool{}
	domainSeen := map[string]bool{}
	var ids []int64
	var domains []string

	for _, status := range results {
		if !idSeen[status.AccountID] {
			idSeen[status.AccountID] = true
			ids = append(ids, status.AccountID)
		}
		if status.AccountDomain != "" && !domainSeen[status.AccountDomain] {
			domainSeen[status.AccountDomain] = true
			domains = append(domains, status.AccountDomain)
		}
	}
	return ids, domains
}

// callerFilters renders the caller-supplied options as filter fragments.
// Id cursors become timestamp bounds through the snowflake encoding; the
// caller's max bound is inclusive, unlike the query language's before:.
func callerFilters(opts Options) []string {
	var fragments []string
	if opts.AccountID != 0 {
		fragments = append(fragments, fmt.Sprintf("account_id = %d", opts.AccountID))
	}
	if opts.MinID != 0 {
		fragments = append(fragments, fmt.Sprintf("created_at_timestamp >= %d", domain.SnowflakeToTime(opts.MinID).Unix()))
	}
	if opts.MaxID != 0 {
		fragments = append(fragments, fmt.Sprintf("created_at_timestamp <= %d", domain.SnowflakeToTime(opts.MaxID).Unix()))
	}
	return fragments
}

func mergeFilters(base string, extra []string) string {
	if len(extra) == 0 {
		return base
	}
	joined := strings.Join(extra, " AND ")
	if base == "" {
		return joined
	}
	return base + " AND " + joined
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
