package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// supportedExtensions are the file types the loader accepts. Scraped
// documentation lands as .txt; .md, .rst and .html cover hand-collected
// guides. HTML files are indexed as-is; the fetcher already strips markup
// from everything it downloads.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".rst":  true,
	".html": true,
}

// LoadResult summarizes a directory load.
type LoadResult struct {
	Documents []Document
	Skipped   int // unsupported extension or empty file
	Failed    int // unreadable or invalid encoding
}

// Loader reads documentation files from the raw data directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for dir. A nil logger falls back to the default.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger}
}

// Load reads every supported file in the directory. It fails when the
// directory does not exist or contains no supported files; individual
// unreadable files are counted and skipped so one bad file cannot abort
// the whole pipeline.
func (l *Loader) Load() (*LoadResult, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory %s not found: create it and add your documentation files", l.dir)
		}
		return nil, fmt.Errorf("reading directory %s: %w", l.dir, err)
	}

	result := &LoadResult{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		ext := strings.ToLower(filepath.Ext(name))
		if !supportedExtensions[ext] {
			result.Skipped++
			continue
		}

		content, err := os.ReadFile(filepath.Join(l.dir, name))
		if err != nil {
			l.logger.Warn("skipping unreadable file", "file", name, "error", err)
			result.Failed++
			continue
		}
		if !utf8.Valid(content) {
			l.logger.Warn("skipping file with invalid UTF-8", "file", name)
			result.Failed++
			continue
		}

		text := string(content)
		if strings.TrimSpace(text) == "" {
			result.Skipped++
			continue
		}

		doc := Document{
			SourceFile: name,
			DocType:    Classify(name),
			Content:    text,
			Size:       int64(len(content)),
		}
		result.Documents = append(result.Documents, doc)
		l.logger.Debug("loaded document", "file", name, "doc_type", doc.DocType, "bytes", doc.Size)
	}

	if len(result.Documents) == 0 {
		return nil, fmt.Errorf("no documentation files found in %s (supported: .txt, .md, .rst, .html)", l.dir)
	}

	return result, nil
}
