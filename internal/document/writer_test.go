package document

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "processed"), 1000, 200)

	doc := Document{SourceFile: "ci4_models.txt", DocType: DocTypeCI4, Content: "content"}
	chunks := []Chunk{
		{ID: ChunkID("ci4_models.txt", 0), SourceFile: "ci4_models.txt", DocType: DocTypeCI4, Index: 0, Content: "first"},
		{ID: ChunkID("ci4_models.txt", 1), SourceFile: "ci4_models.txt", DocType: DocTypeCI4, Index: 1, Content: "second"},
	}

	path, err := w.Write(doc, chunks)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processed", "ci4_models.chunks.json"), path)

	record, err := ReadProcessed(path)
	require.NoError(t, err)
	assert.Equal(t, "ci4_models.txt", record.Source)
	assert.Equal(t, DocTypeCI4, record.DocType)
	assert.Equal(t, 1000, record.ChunkSize)
	assert.Equal(t, 200, record.Overlap)
	assert.False(t, record.ProcessedAt.IsZero())
	require.Len(t, record.Chunks, 2)
	assert.Equal(t, "first", record.Chunks[0].Content)
}

func TestWriter_OverwritesPrevious(t *testing.T) {
	w := NewWriter(t.TempDir(), 500, 100)
	doc := Document{SourceFile: "upgrade_guide.txt", DocType: DocTypeUpgrade}

	path, err := w.Write(doc, []Chunk{{ID: "a", Index: 0, Content: "old"}})
	require.NoError(t, err)

	_, err = w.Write(doc, []Chunk{{ID: "b", Index: 0, Content: "new"}})
	require.NoError(t, err)

	record, err := ReadProcessed(path)
	require.NoError(t, err)
	require.Len(t, record.Chunks, 1)
	assert.Equal(t, "new", record.Chunks[0].Content)
}

func TestProcessedName(t *testing.T) {
	assert.Equal(t, "ci4_models.chunks.json", processedName("ci4_models.txt"))
	assert.Equal(t, "guide.chunks.json", processedName("guide.md"))
}
