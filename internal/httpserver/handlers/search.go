package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paon-social/searchd/internal/domain"
	"github.com/paon-social/searchd/internal/httpserver/deps"
	"github.com/paon-social/searchd/internal/logger"
	"github.com/paon-social/searchd/internal/search"
)

// viewerHeader carries the authenticated account id, set by the edge
// proxy after token validation.
const viewerHeader = "X-Account-ID"

type statusResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	Text            string    `json:"text"`
	Tags            []string  `json:"tags,omitempty"`
	Language        string    `json:"language,omitempty"`
	Visibility      string    `json:"visibility"`
	Sensitive       bool      `json:"sensitive"`
	CreatedAt       time.Time `json:"created_at"`
	FavouritesCount int64     `json:"favourites_count"`
	ReblogsCount    int64     `json:"reblogs_count"`
	RepliesCount    int64     `json:"replies_count"`
}

type searchResponse struct {
	Statuses []statusResponse `json:"statuses"`
}

func SearchStatuses(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		query := strings.TrimSpace(params.Get("q"))

		opts := search.Options{
			Limit:     intParam(params.Get("limit")),
			Offset:    intParam(params.Get("offset")),
			AccountID: int64Param(params.Get("account_id")),
			MinID:     int64Param(params.Get("min_id")),
			MaxID:     int64Param(params.Get("max_id")),
		}

		var viewer *domain.Account
		if id := int64Param(r.Header.Get(viewerHeader)); id != 0 {
			viewer = &domain.Account{ID: id}
		}

		d.Logger.Debug("status search request",
			logger.String("query", query),
			logger.Int64("viewer_id", viewerID(viewer)))

		statuses := d.SearchService.Search(r.Context(), query, viewer, opts)

		resp := searchResponse{Statuses: make([]statusResponse, 0, len(statuses))}
		for _, status := range statuses {
			resp.Statuses = append(resp.Statuses, statusResponse{
				ID:              strconv.FormatInt(status.ID, 10),
				AccountID:       strconv.FormatInt(status.AccountID, 10),
				Text:            status.Text,
				Tags:            status.Tags,
				Language:        status.Language,
				Visibility:      string(status.Visibility),
				Sensitive:       status.Sensitive,
				CreatedAt:       status.CreatedAt,
				FavouritesCount: status.FavouritesCount,
				ReblogsCount:    status.ReblogsCount,
				RepliesCount:    status.RepliesCount,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func intParam(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func int64Param(raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func viewerID(viewer *domain.Account) int64 {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}
