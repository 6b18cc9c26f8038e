package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitter_Validation(t *testing.T) {
	_, err := NewSplitter(100, 100)
	assert.Error(t, err)

	_, err = NewSplitter(100, -1)
	assert.Error(t, err)

	s, err := NewSplitter(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000, s.chunkSize)
	assert.Equal(t, 200, s.overlap)
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	chunks := s.Split("In CodeIgniter 4, models extend CodeIgniter\\Model.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "In CodeIgniter 4, models extend CodeIgniter\\Model.", chunks[0])
}

func TestSplit_EmptyText(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

func TestSplit_ParagraphBoundaries(t *testing.T) {
	s, err := NewSplitter(80, 0)
	require.NoError(t, err)

	text := strings.Repeat("alpha beta gamma. ", 4) + "\n\n" + strings.Repeat("delta epsilon zeta. ", 4)
	chunks := s.Split(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 80)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	var b strings.Builder
	for range 50 {
		b.WriteString("The routing layer changed between versions. ")
	}
	chunks := s.Split(b.String())

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 100, "chunk %d over budget", i)
	}
}

func TestSplit_OverlapCarriesContext(t *testing.T) {
	s, err := NewSplitter(60, 25)
	require.NoError(t, err)

	text := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen"
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// The tail of each chunk must reappear at the head of the next one.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		lastWord := prevWords[len(prevWords)-1]
		assert.Contains(t, chunks[i], lastWord,
			"chunk %d should overlap with chunk %d", i, i-1)
	}
}

func TestSplit_NoSeparators_HardSplit(t *testing.T) {
	s, err := NewSplitter(50, 10)
	require.NoError(t, err)

	// 200 characters without any separator at all.
	text := strings.Repeat("x", 200)
	chunks := s.Split(text)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 50)
	}
	// Hard split with overlap 10 advances 40 chars per chunk.
	assert.Len(t, chunks, 5)
}

func TestSplit_HardSplitRuneSafe(t *testing.T) {
	s, err := NewSplitter(10, 2)
	require.NoError(t, err)

	text := strings.Repeat("世界和平與發展", 10)
	for _, c := range s.Split(text) {
		assert.True(t, strings.ToValidUTF8(c, "") == c, "chunk must be valid UTF-8")
	}
}

func TestSplit_ContentPreserved(t *testing.T) {
	s, err := NewSplitter(120, 0)
	require.NoError(t, err)

	text := "Routing changed. Controllers changed. Models changed. Views changed. " +
		"Helpers are loaded differently. Libraries became services. The loader is gone."
	chunks := s.Split(text)

	// With zero overlap every sentence appears in exactly one chunk.
	joined := strings.Join(chunks, " ")
	for _, sentence := range []string{
		"Routing changed", "Controllers changed", "Models changed",
		"Helpers are loaded differently", "The loader is gone",
	} {
		assert.Contains(t, joined, sentence)
	}
}

func TestSplitDocument_Metadata(t *testing.T) {
	s, err := NewSplitter(50, 10)
	require.NoError(t, err)

	doc := Document{
		SourceFile: "ci4_models.txt",
		DocType:    DocTypeCI4,
		Content:    strings.Repeat("Models extend the base class. ", 10),
	}
	chunks := s.SplitDocument(doc)

	require.NotEmpty(t, chunks)
	seen := make(map[string]bool)
	for i, c := range chunks {
		assert.Equal(t, "ci4_models.txt", c.SourceFile)
		assert.Equal(t, DocTypeCI4, c.DocType)
		assert.Equal(t, i, c.Index)
		assert.False(t, seen[c.ID], "duplicate chunk ID %s", c.ID)
		seen[c.ID] = true
	}
}

func TestChunkID_Stable(t *testing.T) {
	a := ChunkID("ci4_models.txt", 0)
	b := ChunkID("ci4_models.txt", 0)
	c := ChunkID("ci4_models.txt", 1)
	d := ChunkID("ci3_models.txt", 0)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.True(t, strings.HasPrefix(a, "chunk_"))
}
