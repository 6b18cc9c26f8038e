// Package document loads, classifies, and chunks CodeIgniter documentation
// files for indexing.
//
// The pipeline reads documentation from the raw data directory, tags every
// file with a document type derived from its filename, splits the content
// into overlapping chunks sized for embedding, and persists the chunked
// output to the processed data directory.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Document represents one loaded documentation file.
type Document struct {
	// SourceFile is the base filename inside the raw data directory.
	SourceFile string

	// DocType categorizes the file (see Classify).
	DocType string

	// Content is the full UTF-8 text of the file.
	Content string

	// Size is the content length in bytes.
	Size int64
}

// Chunk is one retrievable unit of a document.
type Chunk struct {
	ID         string `json:"id"`
	SourceFile string `json:"source_file"`
	DocType    string `json:"doc_type"`
	Index      int    `json:"index"`
	Content    string `json:"content"`
}

// ProcessedFile is the on-disk record written for each chunked source file.
type ProcessedFile struct {
	Source      string    `json:"source"`
	DocType     string    `json:"doc_type"`
	ChunkSize   int       `json:"chunk_size"`
	Overlap     int       `json:"chunk_overlap"`
	ProcessedAt time.Time `json:"processed_at"`
	Chunks      []Chunk   `json:"chunks"`
}

// ContentHash returns the sha256 hex digest of the document content.
// The catalog uses it to skip unchanged files on re-prepare.
func (d Document) ContentHash() string {
	sum := sha256.Sum256([]byte(d.Content))
	return hex.EncodeToString(sum[:])
}

// ChunkID generates a stable chunk identifier from the source file and
// chunk index. Re-running the pipeline over unchanged input produces the
// same IDs, so indexing is an upsert rather than a duplicate insert.
func ChunkID(sourceFile string, index int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s#%d", sourceFile, index))
	return "chunk_" + hex.EncodeToString(sum[:16])
}
