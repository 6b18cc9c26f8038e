package api

import (
	"errors"
	"net/http"

	"github.com/ciforge/migrag/internal/log"
)

// ServerConfig configures the API server.
type ServerConfig struct {
	Logger  log.Logger
	Asker   Asker     // Required
	Store   Searcher  // Required
	Catalog Cataloger // Required

	// RateLimit is the per-IP request budget per minute. Zero means 60.
	RateLimit int
}

// Server is the JSON API HTTP server.
type Server struct {
	mux     *http.ServeMux
	metrics *metrics
}

// NewServer creates the server with all routes and middleware configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Asker == nil {
		return nil, errors.New("asker is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	m := newMetrics()
	m.chunksIndexed.Set(float64(cfg.Store.Count()))

	ah := &askHandler{asker: cfg.Asker, metrics: m, logger: logger}
	sh := &searchHandler{store: cfg.Store, logger: logger}
	ch := &corpusHandler{catalog: cfg.Catalog, store: cfg.Store, logger: logger}

	mux := http.NewServeMux()
	mux.Handle("POST /api/ask", m.instrument("ask", http.HandlerFunc(ah.ask)))
	mux.Handle("POST /api/search", m.instrument("search", http.HandlerFunc(sh.search)))
	mux.Handle("GET /api/sources", m.instrument("sources", http.HandlerFunc(ch.sources)))
	mux.Handle("GET /api/stats", m.instrument("stats", http.HandlerFunc(ch.stats)))

	// Middleware stack, outermost first:
	//   Recovery -> RequestID -> Logging -> RateLimit -> Routes
	// RequestID sits above Logging so request_id is available in log
	// attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(cfg.RateLimit, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Probes and metrics bypass the middleware stack so rate limiting
	// never starves a scraper or an orchestrator probe.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.HandleFunc("GET /ready", readiness(cfg.Catalog, cfg.Store, logger))
	topMux.Handle("GET /metrics", m.handler())
	topMux.Handle("/", handler)

	return &Server{mux: topMux, metrics: m}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
