package knowledge

import (
	"context"
	"math"
	"strings"
	"testing"

	chromem "github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciforge/migrag/internal/document"
	"github.com/ciforge/migrag/internal/log"
)

// testEmbedding is a deterministic embedding function for tests: each
// dimension counts occurrences of one vocabulary term, normalized to unit
// length. Texts sharing terms get high cosine similarity.
func testEmbedding(ctx context.Context, text string) ([]float32, error) {
	vocabulary := []string{"model", "view", "route", "helper", "upgrade", "controller"}
	lower := strings.ToLower(text)

	vec := make([]float32, len(vocabulary)+1)
	vec[len(vocabulary)] = 0.1 // keeps zero-match texts embeddable
	for i, term := range vocabulary {
		vec[i] = float32(strings.Count(lower, term))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), "ci_migration_docs", chromem.EmbeddingFunc(testEmbedding), log.NewNop())
	require.NoError(t, err)
	return store
}

func testChunks() []document.Chunk {
	return []document.Chunk{
		{
			ID:         document.ChunkID("ci4_models.txt", 0),
			SourceFile: "ci4_models.txt",
			DocType:    document.DocTypeCI4,
			Index:      0,
			Content:    "In CodeIgniter 4 a model extends the base model class.",
		},
		{
			ID:         document.ChunkID("ci3_views.txt", 0),
			SourceFile: "ci3_views.txt",
			DocType:    document.DocTypeCI3,
			Index:      0,
			Content:    "A view in CodeIgniter 3 is loaded by the controller.",
		},
		{
			ID:         document.ChunkID("upgrade_routing.txt", 0),
			SourceFile: "upgrade_routing.txt",
			DocType:    document.DocTypeUpgrade,
			Index:      0,
			Content:    "To upgrade a route definition, move it into the routes file.",
		},
	}
}

func TestStore_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Add(ctx, testChunks()))
	assert.Equal(t, 3, store.Count())

	results, err := store.Search(ctx, "how do models work?", WithTopK(2))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "ci4_models.txt", results[0].SourceFile)
	assert.Equal(t, document.DocTypeCI4, results[0].DocType)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestStore_SearchDocTypeFilter(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Add(ctx, testChunks()))

	results, err := store.Search(ctx, "view rendering",
		WithTopK(3), WithDocType(document.DocTypeCI3))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, document.DocTypeCI3, results[0].DocType)
}

func TestStore_SearchEmptyStore(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmptyStore)
}

func TestStore_TopKClampedToCount(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Add(ctx, testChunks()))

	results, err := store.Search(ctx, "routing", WithTopK(50))
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestStore_StableIDsUpsert(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	chunks := testChunks()
	require.NoError(t, store.Add(ctx, chunks))
	require.NoError(t, store.Add(ctx, chunks))

	assert.Equal(t, 3, store.Count(), "re-adding identical chunks must not duplicate")
}

func TestStore_AddEmptyBatch(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Add(context.Background(), nil))
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Add(ctx, testChunks()))

	require.NoError(t, store.Reset())
	assert.Equal(t, 0, store.Count())

	// The store must remain usable after a reset.
	require.NoError(t, store.Add(ctx, testChunks()[:1]))
	assert.Equal(t, 1, store.Count())
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(dir, "ci_migration_docs", chromem.EmbeddingFunc(testEmbedding), log.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, testChunks()))

	reopened, err := Open(dir, "ci_migration_docs", chromem.EmbeddingFunc(testEmbedding), log.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, reopened.Count())
}
