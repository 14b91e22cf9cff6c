package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/paon-social/searchd/internal/httpserver/deps"
	"github.com/paon-social/searchd/internal/logger"
)

type readyzResponse struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// Readyz verifies the backing stores answer before reporting ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := map[string]string{"redis": "ok", "postgres": "ok"}
		ready := true

		if d.RedisClient != nil {
			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				ready = false
				d.Logger.Warn("redis readiness check failed", logger.Error(err))
			}
		}
		if d.Store != nil {
			if err := d.Store.Ping(ctx); err != nil {
				checks["postgres"] = err.Error()
				ready = false
				d.Logger.Warn("postgres readiness check failed", logger.Error(err))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(readyzResponse{Ready: ready, Checks: checks})
	}
}
