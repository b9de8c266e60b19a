// Package ops exposes health and worker-pool statistics on a separate net/http listener so
// they stay reachable while every worker is pinned to a client connection.
package ops

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpd "github.com/freekieb7/gravel-httpd/http"
)

type StatsSource interface {
	Stats() httpd.Stats
}

func NewHandler(source StatsSource, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /debug/pool", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(source.Stats()); err != nil {
			logger.Error("encoding pool stats failed", "error", err)
		}
	})

	return otelhttp.NewHandler(mux, "ops")
}
