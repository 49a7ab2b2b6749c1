// Package resolve is the three-tier read path used by every list endpoint:
// primary store, then the local JSON document, then an empty collection. A
// read through the accessor never fails; callers only learn which source
// answered.
package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/kyberos/mission-control/pkg/localstore"
	"github.com/kyberos/mission-control/pkg/metrics"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// Source identifies which tier produced a result
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// FallbackPolicy maps a primary-store failure to a fallback decision. Kept
// explicit so the fallback trigger is testable without a real outage.
type FallbackPolicy func(err error) bool

// DefaultFallbackPolicy falls back on any primary-store error
func DefaultFallbackPolicy(err error) bool {
	return err != nil
}

// Stores groups the primary-store readers the accessor resolves against
type Stores struct {
	Tasks    TaskSource
	Content  ContentSource
	Calendar CalendarSource
	Memories MemorySource
	Team     TeamSource
	Metrics  MetricSource
	Projects ProjectSource
}

type TaskSource interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
}

type ContentSource interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, error)
}

type CalendarSource interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error)
}

type MemorySource interface {
	List(ctx context.Context, filter models.MemoryFilter) ([]models.Memory, error)
}

type TeamSource interface {
	List(ctx context.Context, filter models.TeamFilter) ([]models.TeamMember, error)
}

type MetricSource interface {
	List(ctx context.Context) ([]models.Metric, error)
}

type ProjectSource interface {
	List(ctx context.Context) ([]models.Project, error)
}

// Local document collection names, also the file base names under the data
// directory.
const (
	collectionTasks    = "tasks"
	collectionContent  = "content"
	collectionCalendar = "calendar"
	collectionMemories = "memories"
	collectionTeam     = "team"
	collectionMetrics  = "metrics"
	collectionProjects = "projects"
)

// Accessor resolves entity collections through the primary store with a
// local-document fallback
type Accessor struct {
	stores Stores
	local  *localstore.Store
	logger ectologger.Logger
	policy FallbackPolicy
}

// NewAccessor creates a new resolved data accessor
func NewAccessor(stores Stores, local *localstore.Store, logger ectologger.Logger, policy FallbackPolicy) *Accessor {
	if policy == nil {
		policy = DefaultFallbackPolicy
	}
	return &Accessor{
		stores: stores,
		local:  local,
		logger: logger,
		policy: policy,
	}
}

func (a *Accessor) fellBack(ctx context.Context, collection string, err error) bool {
	if err == nil {
		return false
	}
	if !a.policy(err) {
		// Swallowed by policy without a fallback; the caller still never
		// sees the failure.
		a.logger.WithContext(ctx).WithError(err).WithField("collection", collection).Warn("primary store read failed")
		return false
	}
	a.logger.WithContext(ctx).WithError(err).WithField("collection", collection).Warn("primary store read failed, falling back to local document")
	metrics.RecordFallbackRead(collection)
	return true
}

// orEmpty keeps responses array-shaped; a nil slice would serialize as null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Tasks returns the task collection, priority descending then newest first
func (a *Accessor) Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, Source) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.Tasks")
	defer span.End()

	tasks, err := a.stores.Tasks.List(ctx, filter)
	if a.fellBack(ctx, collectionTasks, err) {
		local := localstore.Read[models.Task](ctx, a.local, collectionTasks)
		return orEmpty(sortTasks(filterTasks(local, filter))), SourceFallback
	}
	if err != nil {
		return []models.Task{}, SourcePrimary
	}
	return orEmpty(tasks), SourcePrimary
}

// ContentItems returns the content pipeline, newest first
func (a *Accessor) ContentItems(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, Source) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.ContentItems")
	defer span.End()

	items, err := a.stores.Content.List(ctx, filter)
	if a.fellBack(ctx, collectionContent, err) {
		local := localstore.Read[models.ContentItem](ctx, a.local, collectionContent)
		return orEmpty(sortContent(filterContent(local, filter))), SourceFallback
	}
	if err != nil {
		return []models.ContentItem{}, SourcePrimary
	}
	return orEmpty(items), SourcePrimary
}

// CalendarEvents returns calendar events, time ascending
func (a *Accessor) CalendarEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, Source) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.CalendarEvents")
	defer span.End()

	events, err := a.stores.Calendar.List(ctx, filter)
	if a.fellBack(ctx, collectionCalendar, err) {
		local := localstore.Read[models.CalendarEvent](ctx, a.local, collectionCalendar)
		return orEmpty(sortCalendar(filterCalendar(local, filter))), SourceFallback
	}
	if err != nil {
		return []models.CalendarEvent{}, SourcePrimary
	}
	return orEmpty(events), SourcePrimary
}

// Memories returns memory notes, newest date first. The type field is always
// upper-cased regardless of how the answering store cased it.
func (a *Accessor) Memories(ctx context.Context, filter models.MemoryFilter) ([]models.Memory, Source) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.Memories")
	defer span.End()

	memories, err := a.stores.Memories.List(ctx, filter)
	if a.fellBack(ctx, collectionMemories, err) {
		local := localstore.Read[models.Memory](ctx, a.local, collectionMemories)
		return orEmpty(normalizeMemories(sortMemories(filterMemories(local, filter)))), SourceFallback
	}
	if err != nil {
		return []models.Memory{}, SourcePrimary
	}
	return orEmpty(normalizeMemories(memories)), SourcePrimary
}

// TeamMembers returns team members, name ascending
func (a *Accessor) TeamMembers(ctx context.Context, filter models.TeamFilter) ([]models.TeamMember, Source) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.TeamMembers")
	defer span.End()

	members, err := a.stores.Team.List(ctx, filter)
	if a.fellBack(ctx, collectionTeam, err) {
		local := localstore.Read[models.TeamMember](ctx, a.local, collectionTeam)
		return orEmpty(sortTeam(filterTeam(local, filter))), SourceFallback
	}
	if err != nil {
		return []models.TeamMember{}, SourcePrimary
	}
	return orEmpty(members), SourcePrimary
}

// Metrics returns all metrics
func (a *Accessor) Metrics(ctx context.Context) ([]models.Metric, Source) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.Metrics")
	defer span.End()

	metrics, err := a.stores.Metrics.List(ctx)
	if a.fellBack(ctx, collectionMetrics, err) {
		return orEmpty(localstore.Read[models.Metric](ctx, a.local, collectionMetrics)), SourceFallback
	}
	if err != nil {
		return []models.Metric{}, SourcePrimary
	}
	return orEmpty(metrics), SourcePrimary
}

// Projects returns all projects, most recently updated first
func (a *Accessor) Projects(ctx context.Context) ([]models.Project, Source) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.Projects")
	defer span.End()

	projects, err := a.stores.Projects.List(ctx)
	if a.fellBack(ctx, collectionProjects, err) {
		local := localstore.Read[models.Project](ctx, a.local, collectionProjects)
		return orEmpty(sortProjects(local)), SourceFallback
	}
	if err != nil {
		return []models.Project{}, SourcePrimary
	}
	return orEmpty(projects), SourcePrimary
}

// AppendTaskLocal appends a task to the local document when the primary
// store write failed. The assigned identifier is timestamp-based and checked
// against every identifier already in the collection, so repeated local
// writes stay distinct.
func (a *Accessor) AppendTaskLocal(ctx context.Context, task models.Task) (models.Task, error) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.AppendTaskLocal")
	defer span.End()

	existing := localstore.Read[models.Task](ctx, a.local, collectionTasks)

	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t.ID] = true
	}

	nano := time.Now().UnixNano()
	id := fmt.Sprintf("local-%d", nano)
	for taken[id] {
		nano++
		id = fmt.Sprintf("local-%d", nano)
	}

	now := time.Now()
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now

	updated := append(existing, task)
	if err := localstore.Write(ctx, a.local, collectionTasks, updated); err != nil {
		a.logger.WithContext(ctx).WithError(err).Error("failed to append task to local document")
		return models.Task{}, fmt.Errorf("failed to append task to local document: %w", err)
	}

	a.logger.WithContext(ctx).WithField("id", id).Info("appended task to local document")
	return task, nil
}
