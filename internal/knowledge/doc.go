// Package knowledge provides the vector store and source catalog backing
// retrieval.
//
// The Store persists embedded documentation chunks in a local chromem-go
// database rooted at the configured vector database path (VECTORDB_PATH).
// Each chunk carries source_file, doc_type, and chunk_index metadata, so
// searches can be filtered to one documentation category:
//
//	results, err := store.Search(ctx, "how do I upgrade my models?",
//	    knowledge.WithTopK(4),
//	    knowledge.WithDocType(document.DocTypeUpgrade))
//
// The Catalog is a SQLite sidecar tracking which source files have been
// indexed, with content hashes for skip-unchanged re-prepare and per-type
// statistics. It is bookkeeping only; retrieval never touches it.
package knowledge
