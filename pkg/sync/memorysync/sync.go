// Package memorysync ingests markdown memory notes from a workspace
// directory into the memory collection. Each file is keyed by its absolute
// path, so re-running the synchronizer against an unchanged directory inserts
// nothing.
package memorysync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/kyberos/mission-control/pkg/metrics"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/tracing"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// MemoryStore is the slice of the memory repository the synchronizer needs
type MemoryStore interface {
	GetBySource(ctx context.Context, source string) (*models.Memory, error)
	Create(ctx context.Context, memory *models.Memory) (*models.Memory, error)
}

// Synchronizer scans a directory of markdown notes into the memory store
type Synchronizer struct {
	dir    string
	store  MemoryStore
	logger ectologger.Logger
}

// New creates a memory synchronizer for the given notes directory
func New(dir string, store MemoryStore, logger ectologger.Logger) *Synchronizer {
	return &Synchronizer{
		dir:    dir,
		store:  store,
		logger: logger,
	}
}

// Result reports a completed synchronization pass. Synced counts the files
// scanned, not the records inserted.
type Result struct {
	Synced int `json:"synced"`
}

// Sync scans the memory directory once. A missing directory yields zero
// records; a failure on one file is logged and skipped without aborting the
// rest of the pass.
func (s *Synchronizer) Sync(ctx context.Context) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "memorysync.Sync")
	defer span.End()

	files, err := s.listMemoryFiles()
	if err != nil {
		return Result{}, err
	}

	s.logger.WithContext(ctx).WithField("count", len(files)).Info("found memory files")

	for _, path := range files {
		if err := s.syncFile(ctx, path); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("file", path).Error("failed to sync memory file")
		}
	}

	metrics.RecordSyncRun("memory", len(files))
	return Result{Synced: len(files)}, nil
}

func (s *Synchronizer) listMemoryFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("dir", s.dir).Warn("memory directory does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read memory directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path, err := filepath.Abs(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve memory file path: %w", err)
		}
		files = append(files, path)
	}
	return files, nil
}

func (s *Synchronizer) syncFile(ctx context.Context, path string) error {
	existing, err := s.store.GetBySource(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to check for existing memory: %w", err)
	}
	if existing != nil {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read memory file: %w", err)
	}

	fm := parseFrontmatter(string(raw))
	name := strings.TrimSuffix(filepath.Base(path), ".md")

	memoryType := models.MemoryTypeDaily
	if strings.Contains(name, "MEMORY") {
		memoryType = models.MemoryTypeDecision
	} else if t, ok := fm.data["type"]; ok && t != "" {
		memoryType = models.NormalizeMemoryType(models.MemoryType(t))
	}

	date := time.Now()
	if match := datePattern.FindString(name); match != "" {
		if parsed, err := time.Parse("2006-01-02", match); err == nil {
			date = parsed
		}
	}

	var category *string
	if c, ok := fm.data["category"]; ok && c != "" {
		category = &c
	}

	memory := &models.Memory{
		Type:     memoryType,
		Content:  strings.TrimSpace(fm.body),
		Category: category,
		Date:     date,
		Source:   path,
	}

	if _, err := s.store.Create(ctx, memory); err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}

	s.logger.WithContext(ctx).WithField("file", path).WithField("type", string(memoryType)).Info("ingested memory file")
	return nil
}
