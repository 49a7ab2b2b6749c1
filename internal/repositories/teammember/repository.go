package teammember

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/kyberos/mission-control/pkg/database"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// TeamMemberRepository defines the interface for team member operations
type TeamMemberRepository interface {
	List(ctx context.Context, filter models.TeamFilter) ([]models.TeamMember, error)
	GetByID(ctx context.Context, id string) (*models.TeamMember, error)
	Update(ctx context.Context, id string, req models.UpdateTeamMemberRequest) (*models.TeamMember, error)
	Upsert(ctx context.Context, member *models.TeamMember) error
}

// Repository implements TeamMemberRepository against Postgres
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new team member repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "team_members"

const columns = "id, name, role, department, avatar, current_task, status, responsibilities"

// List returns team members matching the filter, name ascending
func (r *Repository) List(ctx context.Context, filter models.TeamFilter) ([]models.TeamMember, error) {
	ctx, span := tracing.StartSpan(ctx, "TeamMemberRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)

	var conds []string
	if filter.Status != "" {
		conds = append(conds, sb.Equal("status", filter.Status))
	}
	if filter.Department != "" {
		conds = append(conds, sb.Equal("department", filter.Department))
	}
	if len(conds) > 0 {
		sb.Where(conds...)
	}
	sb.OrderBy("name ASC")

	query, args := sb.Build()

	var members []models.TeamMember
	err := r.db.SelectContext(ctx, &members, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list team members")
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return members, nil
}

// GetByID gets a team member by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.TeamMember, error) {
	ctx, span := tracing.StartSpan(ctx, "TeamMemberRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var member models.TeamMember
	err := r.db.GetContext(ctx, &member, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get team member by ID")
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}

	return &member, nil
}

// Update patches a team member's current task and status
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateTeamMemberRequest) (*models.TeamMember, error) {
	ctx, span := tracing.StartSpan(ctx, "TeamMemberRepository.Update")
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
	if req.CurrentTask != nil {
		assignments = append(assignments, ub.Assign("current_task", *req.CurrentTask))
	}
	if req.Status != nil {
		assignments = append(assignments, ub.Assign("status", *req.Status))
	}
	if len(assignments) == 0 {
		return existing, nil
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update team member")
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"rows_affected": rowsAffected,
	}).Info("updated team member")

	return r.GetByID(ctx, id)
}

// Upsert inserts or refreshes a team member, keyed by ID. Used by the seeder
// so repeated seeds converge.
func (r *Repository) Upsert(ctx context.Context, member *models.TeamMember) error {
	ctx, span := tracing.StartSpan(ctx, "TeamMemberRepository.Upsert")
	defer span.End()

	if member.ID == "" {
		member.ID = uuid.New().String()
	}

	ib := database.NewInsertBuilder()
	ib = ib.InsertInto(tableName).
		Cols("id", "name", "role", "department", "avatar", "current_task", "status", "responsibilities").
		Values(member.ID, member.Name, member.Role, member.Department, member.Avatar, member.CurrentTask, member.Status, member.Responsibilities)
	ub := ib.OnConflict("id")
	ub.Set(
		ub.Assign("name", database.Excluded("name")),
		ub.Assign("role", database.Excluded("role")),
		ub.Assign("department", database.Excluded("department")),
		ub.Assign("avatar", database.Excluded("avatar")),
		ub.Assign("current_task", database.Excluded("current_task")),
		ub.Assign("status", database.Excluded("status")),
		ub.Assign("responsibilities", database.Excluded("responsibilities")),
	)

	query, args := ib.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to upsert team member")
		return fmt.Errorf("failed to upsert team member: %w", err)
	}

	return nil
}
