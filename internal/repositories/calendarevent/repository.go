package calendarevent

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

// CalendarEventRepository defines the interface for calendar event operations
type CalendarEventRepository interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	GetByTitleAndSource(ctx context.Context, title, source string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error)
	Update(ctx context.Context, id string, req models.UpdateEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements CalendarEventRepository against Postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new calendar event repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "calendar_events"

const columns = `id, title, "time", recurrence, status, source, color, last_run, next_run`

// List returns calendar events matching the filter, time ascending
func (r *Repository) List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "CalendarEventRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)

	var conds []string
	if filter.Status != "" {
		conds = append(conds, sb.Equal("status", filter.Status))
	}
	if filter.Source != "" {
		conds = append(conds, sb.Equal("source", filter.Source))
	}
	if len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy(`"time" ASC`)

	query, args := sb.Build()

	var events []models.CalendarEvent
	err := r.db.SelectContext(ctx, &events, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list calendar events")
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	return events, nil
}

// GetByID gets a calendar event by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "CalendarEventRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var event models.CalendarEvent
	err := r.db.GetContext(ctx, &event, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get calendar event by ID")
		return nil, fmt.Errorf("failed to get calendar event: %w", err)
	}

	return &event, nil
}

// GetByTitleAndSource looks an event up by its synchronization natural key
func (r *Repository) GetByTitleAndSource(ctx context.Context, title, source string) (*models.CalendarEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "CalendarEventRepository.GetByTitleAndSource")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)
	sb.Where(
		sb.Equal("title", title),
		sb.Equal("source", source),
	)
	sb.Limit(1)

	query, args := sb.Build()

	var event models.CalendarEvent
	err := r.db.GetContext(ctx, &event, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get calendar event by title and source")
		return nil, fmt.Errorf("failed to get calendar event: %w", err)
	}

	return &event, nil
}

// Create inserts a new calendar event
func (r *Repository) Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "CalendarEventRepository.Create")
	defer span.End()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Status == "" {
		event.Status = "active"
	}
	if event.Source == "" {
		event.Source = models.EventSourceManual
	}
	if event.Color == "" {
		event.Color = "blue"
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "title", `"time"`, "recurrence", "status", "source", "color", "last_run", "next_run").
		Values(event.ID, event.Title, event.Time, event.Recurrence, event.Status, event.Source, event.Color, event.LastRun, event.NextRun)

	query, args := ib.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create calendar event")
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":     event.ID,
		"title":  event.Title,
		"source": event.Source,
	}).Info("created calendar event")

	return r.GetByID(ctx, event.ID)
}

// Update patches a calendar event
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateEventRequest) (*models.CalendarEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "CalendarEventRepository.Update")
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

	var assignments []string
	if req.Title != nil {
		assignments = append(assignments, ub.Assign("title", *req.Title))
	}
	if req.Time != nil {
		assignments = append(assignments, ub.Assign(`"time"`, *req.Time))
	}
	if req.Recurrence != nil {
		assignments = append(assignments, ub.Assign("recurrence", *req.Recurrence))
	}
	if req.Status != nil {
		assignments = append(assignments, ub.Assign("status", *req.Status))
	}
	if req.LastRun != nil {
		lastRun, err := time.Parse(time.RFC3339, *req.LastRun)
		if err != nil {
			return nil, fmt.Errorf("invalid last_run: %w", err)
		}
		assignments = append(assignments, ub.Assign("last_run", lastRun))
	}
	if req.NextRun != nil {
		nextRun, err := time.Parse(time.RFC3339, *req.NextRun)
		if err != nil {
			return nil, fmt.Errorf("invalid next_run: %w", err)
		}
		assignments = append(assignments, ub.Assign("next_run", nextRun))
	}
	if len(assignments) == 0 {
		return existing, nil
	}
	ub.Set(assignments...)

	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update calendar event")
		return nil, fmt.Errorf("failed to update calendar event: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("updated calendar event")

	return r.GetByID(ctx, id)
}

// Delete removes a calendar event
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "CalendarEventRepository.Delete")
	defer span.End()

	dbuilder := database.NewDeleteBuilder()
	dbuilder.DeleteFrom(tableName)
	dbuilder.Where(dbuilder.Equal("id", id))

	query, args := dbuilder.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete calendar event")
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("deleted calendar event")

	return nil
}
