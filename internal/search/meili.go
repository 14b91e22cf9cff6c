package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"github.com/paon-social/searchd/internal/domain"
	"github.com/paon-social/searchd/internal/logger"
)

// statusDocument is the index schema. Field names must match the filter
// fragments the query transformer emits.
type statusDocument struct {
	ID                 int64    `json:"id"`
	AccountID          int64    `json:"account_id"`
	AccountDomain      string   `json:"account_domain"`
	Text               string   `json:"text"`
	Tags               []string `json:"tags"`
	Language           string   `json:"language"`
	Visibility         string   `json:"visibility"`
	Sensitive          bool     `json:"sensitive"`
	IsReply            bool     `json:"is_reply"`
	HasMedia           bool     `json:"has_media"`
	HasImage           bool     `json:"has_image"`
	HasVideo           bool     `json:"has_video"`
	HasPoll            bool     `json:"has_poll"`
	HasLink            bool     `json:"has_link"`
	HasEmbed           bool     `json:"has_embed"`
	CreatedAtTimestamp int64    `json:"created_at_timestamp"`
	FavouritesCount    int64    `json:"favourites_count"`
	ReblogsCount       int64    `json:"reblogs_count"`
	RepliesCount       int64    `json:"replies_count"`
}

func documentFromStatus(s domain.Status) statusDocument {
	return statusDocument{
		ID:                 s.ID,
		AccountID:          s.AccountID,
		AccountDomain:      s.AccountDomain,
		Text:               s.Text,
		Tags:               s.Tags,
		Language:           s.Language,
		Visibility:         string(s.Visibility),
		Sensitive:          s.Sensitive,
		IsReply:            s.IsReply,
		HasMedia:           s.HasMedia,
		HasImage:           s.HasImage,
		HasVideo:           s.HasVideo,
		HasPoll:            s.HasPoll,
		HasLink:            s.HasLink,
		HasEmbed:           s.HasEmbed,
		CreatedAtTimestamp: s.CreatedAt.Unix(),
		FavouritesCount:    s.FavouritesCount,
		ReblogsCount:       s.ReblogsCount,
		RepliesCount:       s.RepliesCount,
	}
}

func (d statusDocument) toStatus() domain.Status {
	return domain.Status{
		ID:              d.ID,
		AccountID:       d.AccountID,
		AccountDomain:   d.AccountDomain,
		Text:            d.Text,
		Tags:            d.Tags,
		Language:        d.Language,
		Visibility:      domain.Visibility(d.Visibility),
		Sensitive:       d.Sensitive,
		IsReply:         d.IsReply,
		HasMedia:        d.HasMedia,
		HasImage:        d.HasImage,
		HasVideo:        d.HasVideo,
		HasPoll:         d.HasPoll,
		HasLink:         d.HasLink,
		HasEmbed:        d.HasEmbed,
		CreatedAt:       time.Unix(d.CreatedAtTimestamp, 0).UTC(),
		FavouritesCount: d.FavouritesCount,
		ReblogsCount:    d.ReblogsCount,
		RepliesCount:    d.RepliesCount,
	}
}

// MeiliBackend talks to a Meilisearch instance holding the statuses index.
type MeiliBackend struct {
	index  *meilisearch.Index
	logger logger.Logger
}

// NewMeiliBackend creates a backend against <prefix>statuses on the given
// host.
func NewMeiliBackend(host, apiKey, prefix string, log logger.Logger) *MeiliBackend {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	return &MeiliBackend{
		index:  client.Index(prefix + "statuses"),
		logger: log,
	}
}

// EnsureSettings pushes the index configuration: which fields are
// searched, filtered, and sorted on. Called once at deploy time.
func (b *MeiliBackend) EnsureSettings(_ context.Context) error {
	_, err := b.index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"text", "tags"},
		FilterableAttributes: []string{
			"id", "account_id", "language", "visibility", "sensitive", "is_reply",
			"has_media", "has_image", "has_video", "has_poll", "has_link", "has_embed",
			"created_at_timestamp",
		},
		SortableAttributes: []string{
			"created_at_timestamp", "favourites_count", "reblogs_count", "replies_count",
		},
		RankingRules: []string{
			"words", "typo", "proximity", "attribute", "sort", "exactness",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update index settings: %w", err)
	}
	return nil
}

// Search runs one query against the index. The client library is not
// context-aware; cancellation is bounded by its internal HTTP timeout.
func (b *MeiliBackend) Search(_ context.Context, req Request) ([]domain.Status, error) {
	searchReq := &meilisearch.SearchRequest{
		Offset: int64(req.Offset),
		Limit:  int64(req.Limit),
		Sort:   req.Sort,
	}
	if req.Filter != "" {
		searchReq.Filter = req.Filter
	}

	res, err := b.index.Search(req.Query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("meilisearch query failed: %w", err)
	}

	statuses := make([]domain.Status, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode search hit: %w", err)
		}
		var doc statusDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode search hit: %w", err)
		}
		statuses = append(statuses, doc.toStatus())
	}

	return statuses, nil
}

// IndexStatuses upserts documents into the index.
func (b *MeiliBackend) IndexStatuses(_ context.Context, statuses []domain.Status) error {
	if len(statuses) == 0 {
		return nil
	}

	docs := make([]statusDocument, 0, len(statuses))
	for _, s := range statuses {
		docs = append(docs, documentFromStatus(s))
	}

	if _, err := b.index.AddDocuments(docs, "id"); err != nil {
		return fmt.Errorf("failed to index statuses: %w", err)
	}
	return nil
}

// DeleteStatus removes a document from the index.
func (b *MeiliBackend) DeleteStatus(_ context.Context, id int64) error {
	if _, err := b.index.DeleteDocument(strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("failed to delete status %d from index: %w", id, err)
	}
	return nil
}
