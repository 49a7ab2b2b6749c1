package task

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

// TaskRepository defines the interface for task operations
type TaskRepository interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id string, req models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

// Repository implements TaskRepository against Postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new task repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "tasks"

const columns = "id, title, description, assignee, status, priority, due_date, external_id, created_at, updated_at"

// priorityOrder ranks the priority text values so URGENT sorts first
const priorityOrder = "CASE priority WHEN 'URGENT' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC"

// List returns tasks matching the filter, priority descending then newest first
func (r *Repository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	ctx, span := tracing.StartSpan(ctx, "TaskRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)

	var conds []string
	if filter.Status != "" {
		conds = append(conds, sb.Equal("status", filter.Status))
	}
	if filter.Assignee != "" {
		conds = append(conds, sb.Equal("assignee", filter.Assignee))
	}
	if filter.Priority != "" {
		conds = append(conds, sb.Equal("priority", filter.Priority))
	}
	if len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy(priorityOrder, "created_at DESC")

	query, args := sb.Build()

	var tasks []models.Task
	err := r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list tasks")
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetByID gets a task by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	ctx, span := tracing.StartSpan(ctx, "TaskRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var t models.Task
	err := r.db.GetContext(ctx, &t, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get task by ID")
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &t, nil
}

// Create inserts a new task
func (r *Repository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	ctx, span := tracing.StartSpan(ctx, "TaskRepository.Create")
	defer span.End()

	now := time.Now()
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "title", "description", "assignee", "status", "priority", "due_date", "external_id", "created_at", "updated_at").
		Values(task.ID, task.Title, task.Description, task.Assignee, task.Status, task.Priority, task.DueDate, task.ExternalID, now, now)

	query, args := ib.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create task")
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":    task.ID,
		"title": task.Title,
	}).Info("created task")

	return r.GetByID(ctx, task.ID)
}

// Update patches a task
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateTaskRequest) (*models.Task, error) {
	ctx, span := tracing.StartSpan(ctx, "TaskRepository.Update")
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
	if req.Description != nil {
		ub.SetMore(ub.Assign("description", *req.Description))
	}
	if req.Assignee != nil {
		ub.SetMore(ub.Assign("assignee", *req.Assignee))
	}
	if req.Status != nil {
		ub.SetMore(ub.Assign("status", *req.Status))
	}
	if req.Priority != nil {
		ub.SetMore(ub.Assign("priority", *req.Priority))
	}
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", err)
		}
		ub.SetMore(ub.Assign("due_date", due))
	}

	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update task")
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("updated task")

	return r.GetByID(ctx, id)
}

// Delete removes a task
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "TaskRepository.Delete")
	defer span.End()

	dbuilder := database.NewDeleteBuilder()
	dbuilder.DeleteFrom(tableName)
	dbuilder.Where(dbuilder.Equal("id", id))

	query, args := dbuilder.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete task")
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("deleted task")

	return nil
}
