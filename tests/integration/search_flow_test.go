package integration

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/paon-social/searchd/internal/domain"
	"github.com/paon-social/searchd/internal/feed"
	"github.com/paon-social/searchd/internal/locale"
	"github.com/paon-social/searchd/internal/logger"
	"github.com/paon-social/searchd/internal/query"
	"github.com/paon-social/searchd/internal/search"
)

type capturingBackend struct {
	lastReq search.Request
}

func (b *capturingBackend) Search(_ context.Context, req search.Request) ([]domain.Status, error) {
	b.lastReq = req
	return nil, nil
}

func (b *capturingBackend) IndexStatuses(context.Context, []domain.Status) error { return nil }
func (b *capturingBackend) DeleteStatus(context.Context, int64) error            { return nil }

type accountsFixture struct{}

func (accountsFixture) ResolveAccountID(_ context.Context, username, domain_ string) (int64, error) {
	if username == "alice" && domain_ == "" {
		return 7, nil
	}
	if username == "bob" && domain_ == "remote.example" {
		return 55, nil
	}
	return 0, domain.ErrAccountNotFound
}

type timezonesFixture struct{}

func (timezonesFixture) Timezone(context.Context, int64) (*time.Location, error) {
	return time.UTC, nil
}

type relationsFixture struct{}

func (relationsFixture) RelationsMap(context.Context, int64, []int64, []string) (domain.Relations, error) {
	return domain.EmptyRelations(), nil
}

type bookmarksFixture struct{}

func (bookmarksFixture) BookmarkedStatusIDs(context.Context, int64) ([]feed.Entry, error) {
	return []feed.Entry{
		{StatusID: 200, BookmarkID: 2},
		{StatusID: 100, BookmarkID: 1},
	}, nil
}

// TestSearchScenarios runs full query flows from raw user text down to
// the request handed to the search backend, with the bookmark feed
// served by a real Redis cache.
func TestSearchScenarios(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	bookmarkFeed := feed.New(client, bookmarksFixture{}, logger.Nop())

	transformer := query.NewTransformer(
		accountsFixture{},
		timezonesFixture{},
		locale.Default(),
		bookmarkFeed,
		"paon.example",
		logger.Nop(),
	)

	backend := &capturingBackend{}
	svc := search.NewService(backend, transformer, relationsFixture{}, logger.Nop())

	viewer := &domain.Account{ID: 42}

	tests := []struct {
		name       string
		queryText  string
		viewer     *domain.Account
		wantQuery  string
		wantFilter string
	}{
		{
			name:       "plain terms",
			queryText:  "cats dogs",
			viewer:     nil,
			wantQuery:  "cats dogs",
			wantFilter: `(visibility = "public" OR visibility = "unlisted")`,
		},
		{
			name:       "negated term",
			queryText:  "cats -dogs",
			viewer:     nil,
			wantQuery:  "cats -dogs",
			wantFilter: `(visibility = "public" OR visibility = "unlisted")`,
		},
		{
			name:       "media and language directives",
			queryText:  "vacation has:image language:EN",
			viewer:     nil,
			wantQuery:  "vacation",
			wantFilter: `has_image = true AND language = 'en' AND (visibility = "public" OR visibility = "unlisted")`,
		},
		{
			name:       "from local account",
			queryText:  "from:alice hello",
			viewer:     nil,
			wantQuery:  "hello",
			wantFilter: `account_id = 7 AND (visibility = "public" OR visibility = "unlisted")`,
		},
		{
			name:       "from remote account",
			queryText:  "from:@bob@remote.example hi",
			viewer:     nil,
			wantQuery:  "hi",
			wantFilter: `account_id = 55 AND (visibility = "public" OR visibility = "unlisted")`,
		},
		{
			name:       "own library",
			queryText:  "in:library notes",
			viewer:     viewer,
			wantQuery:  "notes",
			wantFilter: "account_id = 42",
		},
		{
			name:       "bookmarks warm from source",
			queryText:  "in:bookmark recipe",
			viewer:     viewer,
			wantQuery:  "recipe",
			wantFilter: "id IN [200,100]",
		},
		{
			name:       "bookmarks again served from cache",
			queryText:  "in:bookmark recipe",
			viewer:     viewer,
			wantQuery:  "recipe",
			wantFilter: "id IN [200,100]",
		},
		{
			name:       "unterminated quote falls back to plain text",
			queryText:  `cats "broken`,
			viewer:     nil,
			wantQuery:  `cats "broken`,
			wantFilter: `(visibility = "public" OR visibility = "unlisted")`,
		},
		{
			name:       "unknown directive degrades to terms",
			queryText:  "foo:bar",
			viewer:     nil,
			wantQuery:  "foo bar",
			wantFilter: `(visibility = "public" OR visibility = "unlisted")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.Search(context.Background(), tt.queryText, tt.viewer, search.Options{})

			if backend.lastReq.Query != tt.wantQuery {
				t.Errorf("query = %q, want %q", backend.lastReq.Query, tt.wantQuery)
			}
			if backend.lastReq.Filter != tt.wantFilter {
				t.Errorf("filter = %q, want %q", backend.lastReq.Filter, tt.wantFilter)
			}
		})
	}
}
