// Package api exposes the migration assistant over HTTP.
//
// The server wraps the RAG agent and the knowledge store behind a small
// JSON API so editors and CI jobs can query the corpus without the CLI:
//
//	POST /api/ask     {"question": "...", "top_k": 4}
//	POST /api/search  {"query": "...", "top_k": 4, "doc_type": "ci4_documentation"}
//	GET  /api/sources
//	GET  /api/stats
//
// Liveness and readiness probes live at /health and /ready, Prometheus
// metrics at /metrics. Requests pass through a middleware chain of
// panic recovery, request IDs, structured request logging, and per-IP
// rate limiting.
package api
