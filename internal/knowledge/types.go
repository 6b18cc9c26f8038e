package knowledge

// Result represents a single search result with its similarity score.
type Result struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	SourceFile string  `json:"source_file"`
	DocType    string  `json:"doc_type"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float32 `json:"similarity"` // cosine similarity, 0..1
}

// SearchOption configures search behavior using the functional options
// pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int
	docType string
}

// WithTopK sets the maximum number of results to return. Default is 4.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithDocType restricts results to one document type
// (e.g. document.DocTypeUpgrade). Empty means no filter.
func WithDocType(docType string) SearchOption {
	return func(c *searchConfig) {
		c.docType = docType
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: 4}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
