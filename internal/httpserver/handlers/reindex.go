package handlers

import (
	"net/http"

	"github.com/paon-social/searchd/internal/httpserver/deps"
	"github.com/paon-social/searchd/internal/logger"
)

// Reindex triggers an immediate drain of the indexing queue.
func Reindex(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.IndexTrigger <- struct{}{}:
			d.Logger.Info("manual queue drain triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("queue drain triggered\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("queue drain already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("queue drain already in progress\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
