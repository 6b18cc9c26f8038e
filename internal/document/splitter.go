package document

import (
	"fmt"
	"strings"
)

// DefaultSeparators is the separator hierarchy for recursive splitting,
// ordered from strongest structural boundary (paragraph break) down to a
// hard character split. Sentence punctuation before commas and spaces keeps
// chunks readable for technical prose.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " ", ""}

// Splitter splits text into overlapping chunks for embedding.
//
// The algorithm splits on the strongest separator present in the text,
// merges the resulting pieces greedily up to the chunk size, and recurses
// with weaker separators into pieces that are still too large. Consecutive
// chunks of one document share up to overlap characters of trailing context.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter. overlap must be smaller than chunkSize;
// passing zero for both falls back to the pipeline defaults (1000/200).
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize == 0 && overlap == 0 {
		chunkSize, overlap = 1000, 200
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, chunk size), got %d", overlap)
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: DefaultSeparators,
	}, nil
}

// Split splits text into chunks. Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

// SplitDocument splits a document and wraps the pieces in Chunks carrying
// the document's source metadata and stable IDs.
func (s *Splitter) SplitDocument(doc Document) []Chunk {
	pieces := s.Split(doc.Content)
	chunks := make([]Chunk, 0, len(pieces))
	for i, content := range pieces {
		chunks = append(chunks, Chunk{
			ID:         ChunkID(doc.SourceFile, i),
			SourceFile: doc.SourceFile,
			DocType:    doc.DocType,
			Index:      i,
			Content:    content,
		})
	}
	return chunks
}

// split recursively splits text using the given separator hierarchy.
func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	// Pick the strongest separator that actually occurs in the text. The
	// final "" entry always matches and triggers a hard character split.
	sep := ""
	var remaining []string
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			remaining = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardSplit(text)
	}

	pieces := splitKeep(text, sep)

	var chunks []string
	var pending []string
	for _, piece := range pieces {
		if len(piece) <= s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		// Flush what fits, then recurse into the oversized piece with the
		// weaker separators.
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending)...)
			pending = nil
		}
		chunks = append(chunks, s.split(piece, remaining)...)
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending)...)
	}
	return chunks
}

// merge greedily concatenates pieces into chunks of at most chunkSize
// characters, carrying up to overlap characters of trailing pieces into the
// next chunk. Pieces arrive with their separators attached (see splitKeep),
// so concatenation reconstructs the original text.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && len(window) > 0 {
			flush()
			// Slide the window forward until the retained tail fits inside
			// the overlap budget and leaves room for the new piece.
			for len(window) > 0 && (total > s.overlap || total+len(piece) > s.chunkSize) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}
	flush()

	return chunks
}

// hardSplit cuts text into fixed-size chunks at rune boundaries. Used when
// no separator matches, e.g. minified or unbroken content. The step size
// keeps the configured overlap between consecutive chunks.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+s.chunkSize, len(runes))
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitKeep splits text on sep, re-attaching the separator to the end of
// each piece so no characters are lost and sentence boundaries survive.
// Empty pieces are dropped.
func splitKeep(text, sep string) []string {
	raw := strings.Split(text, sep)
	pieces := make([]string, 0, len(raw))
	for i, piece := range raw {
		if i < len(raw)-1 {
			piece += sep
		}
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}
