package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciforge/migrag/internal/document"
	"github.com/ciforge/migrag/internal/knowledge"
)

type fakeStore struct {
	chunks map[string]document.Chunk
	addErr error
	resets int
}

func newFakeStore() *fakeStore {
	return &fakeStore{chunks: make(map[string]document.Chunk)}
}

func (f *fakeStore) Add(_ context.Context, chunks []document.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	for _, c := range chunks {
		f.chunks[c.ID] = c
	}
	return nil
}

func (f *fakeStore) Count() int { return len(f.chunks) }

func (f *fakeStore) Reset() error {
	f.resets++
	f.chunks = make(map[string]document.Chunk)
	return nil
}

type fakeCatalog struct {
	records map[string]knowledge.SourceRecord
	clears  int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{records: make(map[string]knowledge.SourceRecord)}
}

func (f *fakeCatalog) Get(_ context.Context, name string) (*knowledge.SourceRecord, error) {
	rec, ok := f.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", knowledge.ErrSourceNotFound, name)
	}
	return &rec, nil
}

func (f *fakeCatalog) Record(_ context.Context, rec knowledge.SourceRecord) error {
	f.records[rec.Name] = rec
	return nil
}

func (f *fakeCatalog) Clear(context.Context) error {
	f.clears++
	f.records = make(map[string]knowledge.SourceRecord)
	return nil
}

type fixture struct {
	pipeline *Pipeline
	store    *fakeStore
	catalog  *fakeCatalog
	rawDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rawDir := t.TempDir()
	store := newFakeStore()
	catalog := newFakeCatalog()

	p, err := New(Config{
		RawDir:       rawDir,
		ProcessedDir: t.TempDir(),
		ChunkSize:    200,
		ChunkOverlap: 40,
		LockDir:      t.TempDir(),
		Store:        store,
		Catalog:      catalog,
	})
	require.NoError(t, err)

	return &fixture{pipeline: p, store: store, catalog: catalog, rawDir: rawDir}
}

func (f *fixture) addRawFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.rawDir, name), []byte(content), 0o600))
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci4_models.txt", "Models extend CodeIgniter\\Model. They provide finders and validation out of the box.")
	f.addRawFile(t, "upgrade_routing.txt", "Routes move from application/config/routes.php to app/Config/Routes.php.")

	summary, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Indexed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, summary.Chunks, summary.TotalInStore)
	assert.Len(t, f.catalog.records, 2)

	rec := f.catalog.records["ci4_models.txt"]
	assert.Equal(t, document.DocTypeCI4, rec.DocType)
	assert.NotEmpty(t, rec.ContentHash)
	assert.False(t, rec.IndexedAt.IsZero())
}

func TestRun_SkipsUnchangedFiles(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci3_models.txt", "CI3 models extend CI_Model.")

	first, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Indexed)

	second, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Indexed)
	assert.Equal(t, 1, second.Skipped)
}

func TestRun_ReindexesChangedFile(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci3_models.txt", "CI3 models extend CI_Model.")

	_, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)

	f.addRawFile(t, "ci3_models.txt", "CI3 models extend CI_Model and are loaded with $this->load->model().")

	summary, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 0, summary.Skipped)
}

func TestRun_ForceReindexesEverything(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci3_models.txt", "CI3 models extend CI_Model.")

	_, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)

	summary, err := f.pipeline.Run(context.Background(), Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)
}

func TestRun_ResetClearsStoreAndCatalog(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci3_models.txt", "CI3 models extend CI_Model.")

	_, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)

	summary, err := f.pipeline.Run(context.Background(), Options{Reset: true})
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.resets)
	assert.Equal(t, 1, f.catalog.clears)
	// after the reset the file counts as new again
	assert.Equal(t, 1, summary.Indexed)
}

func TestRun_WritesProcessedFiles(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci4_views.txt", "Views are rendered with the view() function instead of $this->load->view().")

	processedDir := t.TempDir()
	p, err := New(Config{
		RawDir:       f.rawDir,
		ProcessedDir: processedDir,
		ChunkSize:    200,
		ChunkOverlap: 40,
		LockDir:      t.TempDir(),
		Store:        f.store,
		Catalog:      f.catalog,
	})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Options{})
	require.NoError(t, err)

	processed, err := document.ReadProcessed(filepath.Join(processedDir, "ci4_views.chunks.json"))
	require.NoError(t, err)
	assert.Equal(t, "ci4_views.txt", processed.Source)
	assert.NotEmpty(t, processed.Chunks)
}

func TestRun_MissingRawDirectory(t *testing.T) {
	f := newFixture(t)

	p, err := New(Config{
		RawDir:       filepath.Join(f.rawDir, "does-not-exist"),
		ProcessedDir: t.TempDir(),
		ChunkSize:    200,
		ChunkOverlap: 40,
		LockDir:      t.TempDir(),
		Store:        f.store,
		Catalog:      f.catalog,
	})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRun_IndexFailureCountsAsFailed(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci3_models.txt", "CI3 models extend CI_Model.")
	f.store.addErr = errors.New("embedding endpoint down")

	summary, err := f.pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Indexed)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, f.catalog.records)
}

func TestRun_ConcurrentRunFailsFast(t *testing.T) {
	f := newFixture(t)
	f.addRawFile(t, "ci3_models.txt", "CI3 models extend CI_Model.")

	// hold the lock like a second process would
	require.NoError(t, os.MkdirAll(filepath.Dir(f.pipeline.lockPath), 0o750))
	held := flock.New(f.pipeline.lockPath)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = held.Unlock() }()

	_, err = f.pipeline.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}
