package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// Writer persists chunked output to the processed data directory. One JSON
// file is written per source document, named <source>.chunks.json. Writes
// are atomic so a crashed prepare run never leaves a truncated file behind.
type Writer struct {
	dir       string
	chunkSize int
	overlap   int
}

// NewWriter creates a writer rooted at dir, recording the chunking
// parameters in each output file.
func NewWriter(dir string, chunkSize, overlap int) *Writer {
	return &Writer{dir: dir, chunkSize: chunkSize, overlap: overlap}
}

// Write persists the chunks of one source document and returns the output
// path. The processed directory is created on first use.
func (w *Writer) Write(doc Document, chunks []Chunk) (string, error) {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("creating processed directory: %w", err)
	}

	record := ProcessedFile{
		Source:      doc.SourceFile,
		DocType:     doc.DocType,
		ChunkSize:   w.chunkSize,
		Overlap:     w.overlap,
		ProcessedAt: time.Now().UTC(),
		Chunks:      chunks,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding processed chunks for %s: %w", doc.SourceFile, err)
	}

	path := filepath.Join(w.dir, processedName(doc.SourceFile))
	if err := renameio.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ReadProcessed loads a previously written chunk file, used by tests and
// the docs subcommands to inspect pipeline output.
func ReadProcessed(path string) (*ProcessedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var record ProcessedFile
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &record, nil
}

// processedName maps a source filename to its chunk file name:
// ci4_models.txt -> ci4_models.chunks.json
func processedName(sourceFile string) string {
	base := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	return base + ".chunks.json"
}
