package project

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/kyberos/mission-control/pkg/database"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// ProjectRepository defines the interface for project reads
type ProjectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
}

// Repository implements ProjectRepository against Postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new project repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "projects"

// List returns all projects, most recently updated first
func (r *Repository) List(ctx context.Context) ([]models.Project, error) {
	ctx, span := tracing.StartSpan(ctx, "ProjectRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("id, name, status, notes, updated_at")
	sb.From(tableName)
	sb.OrderBy("updated_at DESC")

	query, args := sb.Build()

	var projects []models.Project
	err := r.db.SelectContext(ctx, &projects, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list projects")
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}
