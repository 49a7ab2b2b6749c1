// Package localstore is the JSON-document fallback behind the primary store.
// Each collection lives in its own file shaped as {"<collection>": [...]}.
// Documents are read and rewritten wholesale; this path is a last resort, not
// a concurrent-writer-safe store.
package localstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Gobusters/ectologger"
)

type Store struct {
	dir    string
	logger ectologger.Logger
}

func New(dir string, logger ectologger.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Read loads a collection from its document. A missing or malformed document
// yields an empty slice, never an error.
func Read[T any](ctx context.Context, s *Store, collection string) []T {
	raw, err := os.ReadFile(s.path(collection))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithContext(ctx).WithError(err).WithField("collection", collection).Warn("failed to read local document")
		}
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("collection", collection).Warn("local document is malformed")
		return nil
	}

	rawList, ok := doc[collection]
	if !ok {
		return nil
	}

	var records []T
	if err := json.Unmarshal(rawList, &records); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("collection", collection).Warn("local collection is malformed")
		return nil
	}

	return records
}

// Write replaces a collection's document with the given records,
// pretty-printed, creating the data directory when absent.
func Write[T any](ctx context.Context, s *Store, collection string, records []T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	doc := map[string][]T{collection: records}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path(collection), data, 0o644); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"collection": collection,
		"records":    len(records),
	}).Debug("wrote local document")
	return nil
}
