// Package pipeline turns raw documentation files into an indexed corpus.
//
// One run loads every file under the raw data directory, classifies it,
// splits it into overlapping chunks, writes the chunked form to the
// processed directory, indexes the chunks in the vector store, and
// records the file in the catalog. Files whose content hash matches the
// catalog entry are skipped, so re-running after adding one document
// only embeds that document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/ciforge/migrag/internal/document"
	"github.com/ciforge/migrag/internal/knowledge"
	"github.com/ciforge/migrag/internal/log"
)

// Indexer is the vector store surface the pipeline needs.
// *knowledge.Store satisfies this interface.
type Indexer interface {
	Add(ctx context.Context, chunks []document.Chunk) error
	Count() int
	Reset() error
}

// Cataloger tracks which sources have been indexed. *knowledge.Catalog
// satisfies this interface.
type Cataloger interface {
	Get(ctx context.Context, name string) (*knowledge.SourceRecord, error)
	Record(ctx context.Context, rec knowledge.SourceRecord) error
	Clear(ctx context.Context) error
}

// Options control one pipeline run.
type Options struct {
	// Reset drops the existing index and catalog before preparing.
	Reset bool

	// Force re-embeds every file even when its content hash is unchanged.
	Force bool
}

// Summary reports what one run did.
type Summary struct {
	Indexed      int
	Skipped      int
	Failed       int
	Chunks       int
	TotalInStore int
}

// Pipeline wires the preparation stages together.
type Pipeline struct {
	loader   *document.Loader
	splitter *document.Splitter
	writer   *document.Writer
	store    Indexer
	catalog  Cataloger
	lockPath string
	logger   log.Logger
}

// Config assembles a Pipeline.
type Config struct {
	RawDir       string
	ProcessedDir string
	ChunkSize    int
	ChunkOverlap int

	// LockDir holds the run lock, normally the vector DB path. Two
	// concurrent prepares against the same store would corrupt it.
	LockDir string

	Store   Indexer
	Catalog Cataloger
	Logger  log.Logger
}

// New creates a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	splitter, err := document.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("configuring splitter: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Pipeline{
		loader:   document.NewLoader(cfg.RawDir, logger),
		splitter: splitter,
		writer:   document.NewWriter(cfg.ProcessedDir, cfg.ChunkSize, cfg.ChunkOverlap),
		store:    cfg.Store,
		catalog:  cfg.Catalog,
		lockPath: filepath.Join(cfg.LockDir, "prepare.lock"),
		logger:   logger,
	}, nil
}

// Run executes one preparation pass. Only one run may touch a given
// store at a time; a second concurrent run fails fast instead of
// waiting.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := os.MkdirAll(filepath.Dir(p.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fileLock := flock.New(p.lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring prepare lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another prepare is already running (lock held on %s)", p.lockPath)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			p.logger.Warn("releasing prepare lock", "error", err)
		}
	}()

	if opts.Reset {
		p.logger.Info("resetting index and catalog")
		if err := p.store.Reset(); err != nil {
			return nil, fmt.Errorf("resetting vector store: %w", err)
		}
		if err := p.catalog.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clearing catalog: %w", err)
		}
	}

	loaded, err := p.loader.Load()
	if err != nil {
		return nil, err
	}

	summary := &Summary{Failed: loaded.Failed}
	for _, doc := range loaded.Documents {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		indexed, chunks, err := p.processDocument(ctx, doc, opts.Force)
		if err != nil {
			p.logger.Error("processing document", "file", doc.SourceFile, "error", err)
			summary.Failed++
			continue
		}
		if !indexed {
			summary.Skipped++
			continue
		}
		summary.Indexed++
		summary.Chunks += chunks
	}

	summary.TotalInStore = p.store.Count()
	p.logger.Info("prepare finished",
		"indexed", summary.Indexed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"new_chunks", summary.Chunks,
		"total_chunks", summary.TotalInStore)
	return summary, nil
}

// processDocument runs one file through split, persist, index and
// record. Returns indexed=false when the catalog hash matches and force
// is off.
func (p *Pipeline) processDocument(ctx context.Context, doc document.Document, force bool) (indexed bool, chunks int, err error) {
	hash := doc.ContentHash()

	if !force {
		rec, err := p.catalog.Get(ctx, doc.SourceFile)
		if err != nil && !errors.Is(err, knowledge.ErrSourceNotFound) {
			return false, 0, fmt.Errorf("checking catalog: %w", err)
		}
		if rec != nil && rec.ContentHash == hash {
			p.logger.Debug("unchanged, skipping", "file", doc.SourceFile)
			return false, 0, nil
		}
	}

	split := p.splitter.SplitDocument(doc)
	if len(split) == 0 {
		return false, 0, fmt.Errorf("no chunks produced")
	}

	if _, err := p.writer.Write(doc, split); err != nil {
		return false, 0, fmt.Errorf("writing processed file: %w", err)
	}

	if err := p.store.Add(ctx, split); err != nil {
		return false, 0, fmt.Errorf("indexing chunks: %w", err)
	}

	err = p.catalog.Record(ctx, knowledge.SourceRecord{
		Name:        doc.SourceFile,
		DocType:     doc.DocType,
		SizeBytes:   doc.Size,
		ChunkCount:  len(split),
		ContentHash: hash,
		IndexedAt:   time.Now(),
	})
	if err != nil {
		return false, 0, fmt.Errorf("recording source: %w", err)
	}

	p.logger.Info("indexed document",
		"file", doc.SourceFile,
		"doc_type", doc.DocType,
		"chunks", len(split))
	return true, len(split), nil
}
