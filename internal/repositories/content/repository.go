package content

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

// ContentRepository defines the interface for content pipeline operations
type ContentRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, error)
	GetByID(ctx context.Context, id string) (*models.ContentItem, error)
	Create(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error)
	Update(ctx context.Context, id string, req models.UpdateContentRequest) (*models.ContentItem, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements ContentRepository against Postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new content repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "content_items"

const columns = "id, title, stage, script, thumbnail_url, notes, published_at, created_at, updated_at"

// List returns content items matching the filter, newest first
func (r *Repository) List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, error) {
	ctx, span := tracing.StartSpan(ctx, "ContentRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)
	if filter.Stage != "" {
		sb.Where(sb.Equal("stage", filter.Stage))
	}
	sb.OrderBy("created_at DESC")

	query, args := sb.Build()

	var items []models.ContentItem
	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list content items")
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}

	return items, nil
}

// GetByID gets a content item by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	ctx, span := tracing.StartSpan(ctx, "ContentRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var item models.ContentItem
	err := r.db.GetContext(ctx, &item, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get content item by ID")
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}

	return &item, nil
}

// Create inserts a new content item
func (r *Repository) Create(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error) {
	ctx, span := tracing.StartSpan(ctx, "ContentRepository.Create")
	defer span.End()

	now := time.Now()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Stage == "" {
		item.Stage = models.ContentStageIdea
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "title", "stage", "script", "thumbnail_url", "notes", "published_at", "created_at", "updated_at").
		Values(item.ID, item.Title, item.Stage, item.Script, item.ThumbnailURL, item.Notes, item.PublishedAt, now, now)

	query, args := ib.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create content item")
		return nil, fmt.Errorf("failed to create content item: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":    item.ID,
		"title": item.Title,
	}).Info("created content item")

	return r.GetByID(ctx, item.ID)
}

// Update patches a content item
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateContentRequest) (*models.ContentItem, error) {
	ctx, span := tracing.StartSpan(ctx, "ContentRepository.Update")
	defer span.End()

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(ub.Assign("updated_at", time.Now()))

	if req.Title != nil {
		ub.SetMore(ub.Assign("title", *req.Title))
	}
	if req.Stage != nil {
		ub.SetMore(ub.Assign("stage", *req.Stage))
	}
	if req.Script != nil {
		ub.SetMore(ub.Assign("script", *req.Script))
	}
	if req.ThumbnailURL != nil {
		ub.SetMore(ub.Assign("thumbnail_url", *req.ThumbnailURL))
	}
	if req.Notes != nil {
		ub.SetMore(ub.Assign("notes", *req.Notes))
	}
	if req.PublishedAt != nil {
		published, err := time.Parse(time.RFC3339, *req.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid published_at: %w", err)
		}
		ub.SetMore(ub.Assign("published_at", published))
	}

	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update content item")
		return nil, fmt.Errorf("failed to update content item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("updated content item")

	return r.GetByID(ctx, id)
}

// Delete removes a content item
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "ContentRepository.Delete")
	defer span.End()

	dbuilder := database.NewDeleteBuilder()
	dbuilder.DeleteFrom(tableName)
	dbuilder.Where(dbuilder.Equal("id", id))

	query, args := dbuilder.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete content item")
		return fmt.Errorf("failed to delete content item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("deleted content item")

	return nil
}
