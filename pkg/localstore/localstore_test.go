package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return New(dir, logger), dir
}

func TestReadWriteRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	records := []record{{ID: "1", Name: "first"}, {ID: "2", Name: "second"}}
	require.NoError(t, Write(ctx, store, "widgets", records))

	got := Read[record](ctx, store, "widgets")
	assert.Equal(t, records, got)
}

func TestRead_MissingDocumentIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	got := Read[record](context.Background(), store, "widgets")
	assert.Empty(t, got)
}

func TestRead_MalformedDocumentIsEmpty(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widgets.json"), []byte("{not json"), 0644))

	got := Read[record](context.Background(), store, "widgets")
	assert.Empty(t, got)
}

func TestRead_MissingCollectionKeyIsEmpty(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widgets.json"), []byte(`{"other": []}`), 0644))

	got := Read[record](context.Background(), store, "widgets")
	assert.Empty(t, got)
}

func TestWrite_CreatesDirectoryAndKeysDocument(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := New(dir, logger)
	ctx := context.Background()

	require.NoError(t, Write(ctx, store, "widgets", []record{{ID: "1"}}))

	raw, err := os.ReadFile(filepath.Join(dir, "widgets.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"widgets"`)

	got := Read[record](ctx, store, "widgets")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestWrite_OverwritesWholeCollection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Write(ctx, store, "widgets", []record{{ID: "1"}, {ID: "2"}}))
	require.NoError(t, Write(ctx, store, "widgets", []record{{ID: "3"}}))

	got := Read[record](ctx, store, "widgets")
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}
