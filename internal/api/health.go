package api

import (
	"net/http"

	"github.com/ciforge/migrag/internal/log"
)

// health is the liveness probe.
func health(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// readiness reports whether the server can actually answer: the catalog
// database responds and the vector store holds at least one chunk.
func readiness(catalog Cataloger, store Searcher, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalog.Ping(r.Context()); err != nil {
			logger.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "catalog unreachable",
			}, logger)
			return
		}

		chunks := store.Count()
		if chunks == 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "vector store is empty",
			}, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"chunks": chunks,
		}, logger)
	}
}
