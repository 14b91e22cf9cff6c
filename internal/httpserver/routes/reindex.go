package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/paon-social/searchd/internal/httpserver/deps"
	"github.com/paon-social/searchd/internal/httpserver/handlers"
)

func init() { Register(registerReindex) }

func registerReindex(r chi.Router, d deps.Deps) {
	r.Post("/api/v1/index/run", handlers.Reindex(d))
}
