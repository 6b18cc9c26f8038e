package knowledge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ciforge/migrag/internal/document"
	"github.com/ciforge/migrag/internal/log"
)

// ErrEmptyStore indicates a search against a store with no indexed chunks.
var ErrEmptyStore = errors.New("vector store is empty: run `migrag prepare` first")

// searchTimeout bounds embedding generation plus similarity search for one
// query so a stalled embedding backend cannot block callers indefinitely.
const searchTimeout = 30 * time.Second

// Store persists embedded documentation chunks and serves similarity
// searches. It wraps a persistent chromem-go database; all vectors live
// under the configured database path on the local filesystem.
//
// Store is safe for concurrent use.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embed      chromem.EmbeddingFunc
	logger     log.Logger
}

// Open opens (or creates) the vector database at path and the named
// collection inside it. The embedding function is invoked for every added
// chunk and every query.
func Open(path, collectionName string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector database at %s: %w", path, err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collectionName, err)
	}

	return &Store{
		db:         db,
		collection: collection,
		name:       collectionName,
		embed:      embed,
		logger:     logger,
	}, nil
}

// Add embeds and indexes a batch of chunks. Chunk IDs are stable, so
// re-adding an unchanged chunk overwrites its previous entry instead of
// duplicating it. Embedding runs with bounded parallelism.
func (s *Store) Add(ctx context.Context, chunks []document.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, chromem.Document{
			ID:      c.ID,
			Content: c.Content,
			Metadata: map[string]string{
				"source_file": c.SourceFile,
				"doc_type":    c.DocType,
				"chunk_index": strconv.Itoa(c.Index),
			},
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("indexing %d chunks: %w", len(docs), err)
	}

	s.logger.Debug("indexed chunks", "count", len(docs), "collection", s.name)
	return nil
}

// Search performs semantic search and returns the most similar chunks,
// ordered by descending similarity.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	total := s.collection.Count()
	if total == 0 {
		return nil, ErrEmptyStore
	}

	// chromem rejects queries asking for more results than stored vectors.
	topK := min(cfg.topK, total)

	var where map[string]string
	if cfg.docType != "" {
		where = map[string]string{"doc_type": cfg.docType}
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	hits, err := s.collection.Query(queryCtx, query, topK, where, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search timeout after %s: %w", searchTimeout, err)
		}
		return nil, fmt.Errorf("searching collection %q: %w", s.name, err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		idx, _ := strconv.Atoi(hit.Metadata["chunk_index"])
		results = append(results, Result{
			ID:         hit.ID,
			Content:    hit.Content,
			SourceFile: hit.Metadata["source_file"],
			DocType:    hit.Metadata["doc_type"],
			ChunkIndex: idx,
			Similarity: hit.Similarity,
		})
	}
	return results, nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Reset drops and recreates the collection, removing every indexed chunk.
func (s *Store) Reset() error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("deleting collection %q: %w", s.name, err)
	}
	collection, err := s.db.GetOrCreateCollection(s.name, nil, s.embed)
	if err != nil {
		return fmt.Errorf("recreating collection %q: %w", s.name, err)
	}
	s.collection = collection
	s.logger.Debug("collection reset", "collection", s.name)
	return nil
}
