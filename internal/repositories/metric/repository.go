package metric

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/kyberos/mission-control/pkg/database"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// MetricRepository defines the interface for metric reads
type MetricRepository interface {
	List(ctx context.Context) ([]models.Metric, error)
}

// Repository implements MetricRepository against Postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new metric repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "metrics"

// List returns all metrics
func (r *Repository) List(ctx context.Context) ([]models.Metric, error) {
	ctx, span := tracing.StartSpan(ctx, "MetricRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(`id, "key", value_num, value_text`)
	sb.From(tableName)

	query, args := sb.Build()

	var metrics []models.Metric
	err := r.db.SelectContext(ctx, &metrics, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list metrics")
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}

	return metrics, nil
}
