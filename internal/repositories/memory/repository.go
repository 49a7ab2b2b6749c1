package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/kyberos/mission-control/pkg/database"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// MemoryRepository defines the interface for memory note operations
type MemoryRepository interface {
	List(ctx context.Context, filter models.MemoryFilter) ([]models.Memory, error)
	GetBySource(ctx context.Context, source string) (*models.Memory, error)
	Create(ctx context.Context, memory *models.Memory) (*models.Memory, error)
}

// Repository implements MemoryRepository against Postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new memory repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "memories"

const columns = `id, "type", content, category, "date", source, created_at`

// List returns memories matching the filter, newest date first. The search
// term is matched case-insensitively against content and category.
func (r *Repository) List(ctx context.Context, filter models.MemoryFilter) ([]models.Memory, error) {
	ctx, span := tracing.StartSpan(ctx, "MemoryRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)

	var conds []string
	if filter.Type != "" {
		conds = append(conds, sb.Equal(`"type"`, filter.Type))
	}
	if filter.Category != "" {
		conds = append(conds, sb.Equal("category", filter.Category))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conds = append(conds, sb.Or(
			sb.ILike("content", pattern),
			sb.ILike("category", pattern),
		))
	}
	if len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy(`"date" DESC`)

	query, args := sb.Build()

	var memories []models.Memory
	err := r.db.SelectContext(ctx, &memories, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list memories")
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	return memories, nil
}

// GetBySource looks a memory up by its source path, the natural key used by
// the filesystem synchronizer for deduplication.
func (r *Repository) GetBySource(ctx context.Context, source string) (*models.Memory, error) {
	ctx, span := tracing.StartSpan(ctx, "MemoryRepository.GetBySource")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)
	sb.Where(sb.Equal("source", source))
	sb.Limit(1)

	query, args := sb.Build()

	var m models.Memory
	err := r.db.GetContext(ctx, &m, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get memory by source")
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}

	return &m, nil
}

// Create inserts a new memory
func (r *Repository) Create(ctx context.Context, memory *models.Memory) (*models.Memory, error) {
	ctx, span := tracing.StartSpan(ctx, "MemoryRepository.Create")
	defer span.End()

	if memory.ID == "" {
		memory.ID = uuid.New().String()
	}
	if memory.Date.IsZero() {
		memory.Date = time.Now()
	}
	memory.CreatedAt = time.Now()

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", `"type"`, "content", "category", `"date"`, "source", "created_at").
		Values(memory.ID, memory.Type, memory.Content, memory.Category, memory.Date, memory.Source, memory.CreatedAt)

	query, args := ib.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create memory")
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":     memory.ID,
		"type":   memory.Type,
		"source": memory.Source,
	}).Info("created memory")

	return memory, nil
}
