package memorysync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyberos/mission-control/pkg/models"
)

type fakeMemoryStore struct {
	bySource map[string]*models.Memory
	created  []*models.Memory
}

func newFakeMemoryStore() *fakeMemoryStore {
	return &fakeMemoryStore{bySource: map[string]*models.Memory{}}
}

func (f *fakeMemoryStore) GetBySource(ctx context.Context, source string) (*models.Memory, error) {
	return f.bySource[source], nil
}

func (f *fakeMemoryStore) Create(ctx context.Context, memory *models.Memory) (*models.Memory, error) {
	memory.ID = fmt.Sprintf("m-%d", len(f.created)+1)
	f.bySource[memory.Source] = memory
	f.created = append(f.created, memory)
	return memory, nil
}

func newTestSynchronizer(t *testing.T) (*Synchronizer, string, *fakeMemoryStore) {
	t.Helper()
	dir := t.TempDir()
	store := newFakeMemoryStore()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return New(dir, store, logger), dir, store
}

func writeNote(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestSync_SecondRunInsertsNothing(t *testing.T) {
	sync, dir, store := newTestSynchronizer(t)

	writeNote(t, dir, "2026-02-01-daily.md", "---\ntype: daily\n---\nstandup notes\n")
	writeNote(t, dir, "coffee.md", "---\ntype: preference\ncategory: Food\n---\nprefers dark roast\n")
	writeNote(t, dir, "plain.md", "no metadata here\n")

	result, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Synced)
	assert.Len(t, store.created, 3)

	result, err = sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Synced)
	assert.Len(t, store.created, 3)
}

func TestSync_MemoryFilenameForcesDecisionType(t *testing.T) {
	sync, dir, store := newTestSynchronizer(t)

	writeNote(t, dir, "2024-03-01-MEMORY-notes.md", "remember this\n")

	result, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, store.created, 1)

	memory := store.created[0]
	assert.Equal(t, models.MemoryTypeDecision, memory.Type)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), memory.Date)
	assert.Nil(t, memory.Category)
	assert.Equal(t, "remember this", memory.Content)
	assert.Equal(t, filepath.Join(dir, "2024-03-01-MEMORY-notes.md"), memory.Source)
}

func TestSync_FrontmatterTypeAndCategory(t *testing.T) {
	sync, dir, store := newTestSynchronizer(t)

	writeNote(t, dir, "habits.md", "---\ntype: preference\ncategory: Health\nextra: ignored\n---\nmorning runs\n")

	_, err := sync.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	memory := store.created[0]
	assert.Equal(t, models.MemoryTypePreference, memory.Type)
	require.NotNil(t, memory.Category)
	assert.Equal(t, "Health", *memory.Category)
	assert.Equal(t, "morning runs", memory.Content)
}

func TestSync_MissingDirectoryIsNotAnError(t *testing.T) {
	store := newFakeMemoryStore()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	sync := New(filepath.Join(t.TempDir(), "does-not-exist"), store, logger)

	result, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Empty(t, store.created)
}

func TestSync_SkipsNonMarkdownEntries(t *testing.T) {
	sync, dir, store := newTestSynchronizer(t)

	writeNote(t, dir, "keep.md", "kept\n")
	writeNote(t, dir, "skip.txt", "skipped\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0755))

	result, err := sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	require.Len(t, store.created, 1)
	assert.Equal(t, "kept", store.created[0].Content)
}

func TestParseFrontmatter_NoBlock(t *testing.T) {
	fm := parseFrontmatter("just a body\nwith lines\n")
	assert.Empty(t, fm.data)
	assert.Equal(t, "just a body\nwith lines\n", fm.body)
}

func TestParseFrontmatter_UnterminatedBlockIsBody(t *testing.T) {
	raw := "---\ntype: daily\nno closing fence\n"
	fm := parseFrontmatter(raw)
	assert.Empty(t, fm.data)
	assert.Equal(t, raw, fm.body)
}

func TestParseFrontmatter_FirstColonSplits(t *testing.T) {
	fm := parseFrontmatter("---\nnote: time: 10:30\n---\nbody\n")
	assert.Equal(t, "time: 10:30", fm.data["note"])
	assert.Equal(t, "body\n", fm.body)
}
