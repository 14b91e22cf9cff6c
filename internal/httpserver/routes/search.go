package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/paon-social/searchd/internal/httpserver/deps"
	"github.com/paon-social/searchd/internal/httpserver/handlers"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	r.Get("/api/v1/search/statuses", handlers.SearchStatuses(d))
}
