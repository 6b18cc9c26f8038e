package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ciforge/migrag/internal/agent"
	"github.com/ciforge/migrag/internal/document"
	"github.com/ciforge/migrag/internal/knowledge"
	"github.com/ciforge/migrag/internal/log"
)

const maxBodyBytes = 64 << 10

// Asker answers migration questions. *agent.Agent satisfies this
// interface.
type Asker interface {
	Ask(ctx context.Context, question string, opts ...knowledge.SearchOption) (*agent.Answer, error)
}

// Searcher runs similarity searches over the corpus. *knowledge.Store
// satisfies this interface.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
	Count() int
}

// Cataloger reports what has been indexed. *knowledge.Catalog satisfies
// this interface.
type Cataloger interface {
	List(ctx context.Context) ([]knowledge.SourceRecord, error)
	Stats(ctx context.Context) ([]knowledge.TypeStats, error)
	Ping(ctx context.Context) error
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
	DocType  string `json:"doc_type,omitempty"`
}

type searchRequest struct {
	Query   string `json:"query"`
	TopK    int    `json:"top_k,omitempty"`
	DocType string `json:"doc_type,omitempty"`
}

type searchResponse struct {
	Results []knowledge.Result `json:"results"`
}

type statsResponse struct {
	Chunks int                   `json:"chunks"`
	Types  []knowledge.TypeStats `json:"types"`
}

type askHandler struct {
	asker   Asker
	metrics *metrics
	logger  log.Logger
}

func (h *askHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required", h.logger)
		return
	}

	opts, ok := searchOptions(w, req.TopK, req.DocType, h.logger)
	if !ok {
		return
	}

	answer, err := h.asker.Ask(r.Context(), req.Question, opts...)
	if err != nil {
		h.metrics.questionsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, knowledge.ErrEmptyStore) {
			writeError(w, http.StatusConflict, "empty_store", err.Error(), h.logger)
			return
		}
		h.logger.Error("answering question", "error", err)
		writeError(w, http.StatusBadGateway, "ask_failed", "failed to generate an answer", h.logger)
		return
	}

	h.metrics.questionsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, answer, h.logger)
}

type searchHandler struct {
	store  Searcher
	logger log.Logger
}

func (h *searchHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "query is required", h.logger)
		return
	}

	opts, ok := searchOptions(w, req.TopK, req.DocType, h.logger)
	if !ok {
		return
	}

	results, err := h.store.Search(r.Context(), req.Query, opts...)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmptyStore) {
			writeError(w, http.StatusConflict, "empty_store", err.Error(), h.logger)
			return
		}
		h.logger.Error("searching corpus", "error", err)
		writeError(w, http.StatusInternalServerError, "search_failed", "search failed", h.logger)
		return
	}
	if results == nil {
		results = []knowledge.Result{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results}, h.logger)
}

type corpusHandler struct {
	catalog Cataloger
	store   Searcher
	logger  log.Logger
}

func (h *corpusHandler) sources(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("listing sources", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list sources", h.logger)
		return
	}
	if records == nil {
		records = []knowledge.SourceRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": records}, h.logger)
}

func (h *corpusHandler) stats(w http.ResponseWriter, r *http.Request) {
	types, err := h.catalog.Stats(r.Context())
	if err != nil {
		h.logger.Error("reading corpus stats", "error", err)
		writeError(w, http.StatusInternalServerError, "stats_failed", "failed to read stats", h.logger)
		return
	}
	if types == nil {
		types = []knowledge.TypeStats{}
	}
	writeJSON(w, http.StatusOK, statsResponse{Chunks: h.store.Count(), Types: types}, h.logger)
}

// decodeBody reads a size-capped JSON body into dst, writing the error
// response itself when decoding fails.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger log.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", logger)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", logger)
		return false
	}
	return true
}

// searchOptions validates top_k and doc_type and converts them into
// search options. Writes the error response on invalid input.
func searchOptions(w http.ResponseWriter, topK int, docType string, logger log.Logger) ([]knowledge.SearchOption, bool) {
	var opts []knowledge.SearchOption

	if topK < 0 || topK > 50 {
		writeError(w, http.StatusBadRequest, "invalid_top_k", "top_k must be between 1 and 50", logger)
		return nil, false
	}
	if topK > 0 {
		opts = append(opts, knowledge.WithTopK(topK))
	}

	if docType != "" {
		if !document.ValidDocType(docType) {
			writeError(w, http.StatusBadRequest, "invalid_doc_type", "unknown doc_type", logger)
			return nil, false
		}
		opts = append(opts, knowledge.WithDocType(docType))
	}
	return opts, true
}
