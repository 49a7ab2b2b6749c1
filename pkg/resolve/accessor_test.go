package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyberos/mission-control/pkg/localstore"
	"github.com/kyberos/mission-control/pkg/models"
)

var errDown = errors.New("connection refused")

type fakeTaskSource struct {
	tasks []models.Task
	err   error
}

func (f *fakeTaskSource) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return f.tasks, f.err
}

type fakeMemorySource struct {
	memories []models.Memory
	err      error
}

func (f *fakeMemorySource) List(ctx context.Context, filter models.MemoryFilter) ([]models.Memory, error) {
	return f.memories, f.err
}

type fakeMetricSource struct {
	err error
}

func (f *fakeMetricSource) List(ctx context.Context) ([]models.Metric, error) {
	return nil, f.err
}

func newTestAccessor(t *testing.T, stores Stores) (*Accessor, *localstore.Store) {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	local := localstore.New(t.TempDir(), logger)
	return NewAccessor(stores, local, logger, nil), local
}

func TestTasks_PrimaryHealthy(t *testing.T) {
	primary := []models.Task{{ID: "1", Title: "ship it"}}
	accessor, _ := newTestAccessor(t, Stores{Tasks: &fakeTaskSource{tasks: primary}})

	tasks, source := accessor.Tasks(context.Background(), models.TaskFilter{})
	assert.Equal(t, SourcePrimary, source)
	assert.Equal(t, primary, tasks)
}

func TestTasks_FallsBackToLocalDocument(t *testing.T) {
	accessor, local := newTestAccessor(t, Stores{Tasks: &fakeTaskSource{err: errDown}})

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	seed := []models.Task{
		{ID: "a", Title: "low old", Priority: models.TaskPriorityLow, CreatedAt: base},
		{ID: "b", Title: "urgent", Priority: models.TaskPriorityUrgent, CreatedAt: base.Add(-time.Hour)},
		{ID: "c", Title: "low new", Priority: models.TaskPriorityLow, CreatedAt: base.Add(time.Hour)},
	}
	require.NoError(t, localstore.Write(context.Background(), local, "tasks", seed))

	tasks, source := accessor.Tasks(context.Background(), models.TaskFilter{})
	assert.Equal(t, SourceFallback, source)
	require.Len(t, tasks, 3)
	assert.Equal(t, "b", tasks[0].ID)
	assert.Equal(t, "c", tasks[1].ID)
	assert.Equal(t, "a", tasks[2].ID)
}

func TestTasks_FallbackAppliesFilters(t *testing.T) {
	accessor, local := newTestAccessor(t, Stores{Tasks: &fakeTaskSource{err: errDown}})

	seed := []models.Task{
		{ID: "a", Status: models.TaskStatusTodo, Assignee: "katarina"},
		{ID: "b", Status: models.TaskStatusDone, Assignee: "katarina"},
		{ID: "c", Status: models.TaskStatusTodo, Assignee: "kyber"},
	}
	require.NoError(t, localstore.Write(context.Background(), local, "tasks", seed))

	tasks, source := accessor.Tasks(context.Background(), models.TaskFilter{Status: "TODO", Assignee: "katarina"})
	assert.Equal(t, SourceFallback, source)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].ID)
}

func TestTasks_EmptyWhenBothTiersEmpty(t *testing.T) {
	accessor, _ := newTestAccessor(t, Stores{Tasks: &fakeTaskSource{err: errDown}})

	tasks, source := accessor.Tasks(context.Background(), models.TaskFilter{})
	assert.Equal(t, SourceFallback, source)
	assert.NotNil(t, tasks, "empty collections stay array-shaped in JSON")
	assert.Empty(t, tasks)
}

func TestMemories_TypeNormalizedOnBothTiers(t *testing.T) {
	primary := &fakeMemorySource{memories: []models.Memory{{ID: "1", Type: "decision"}}}
	accessor, local := newTestAccessor(t, Stores{Memories: primary})

	memories, source := accessor.Memories(context.Background(), models.MemoryFilter{})
	assert.Equal(t, SourcePrimary, source)
	require.Len(t, memories, 1)
	assert.Equal(t, models.MemoryTypeDecision, memories[0].Type)

	primary.err = errDown
	seed := []models.Memory{{ID: "2", Type: "learning"}}
	require.NoError(t, localstore.Write(context.Background(), local, "memories", seed))

	memories, source = accessor.Memories(context.Background(), models.MemoryFilter{})
	assert.Equal(t, SourceFallback, source)
	require.Len(t, memories, 1)
	assert.Equal(t, models.MemoryTypeLearning, memories[0].Type)
}

func TestMemories_FallbackSearchMatchesContentAndCategory(t *testing.T) {
	accessor, local := newTestAccessor(t, Stores{Memories: &fakeMemorySource{err: errDown}})

	health := "Health"
	seed := []models.Memory{
		{ID: "a", Content: "prefers dark roast COFFEE"},
		{ID: "b", Content: "unrelated", Category: &health},
		{ID: "c", Content: "nothing here"},
	}
	require.NoError(t, localstore.Write(context.Background(), local, "memories", seed))

	memories, _ := accessor.Memories(context.Background(), models.MemoryFilter{Search: "coffee"})
	require.Len(t, memories, 1)
	assert.Equal(t, "a", memories[0].ID)

	memories, _ = accessor.Memories(context.Background(), models.MemoryFilter{Search: "health"})
	require.Len(t, memories, 1)
	assert.Equal(t, "b", memories[0].ID)
}

func TestMetrics_PolicyCanSuppressFallback(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	local := localstore.New(t.TempDir(), logger)
	never := func(err error) bool { return false }
	accessor := NewAccessor(Stores{Metrics: &fakeMetricSource{err: errDown}}, local, logger, never)

	metrics, source := accessor.Metrics(context.Background())
	assert.Equal(t, SourcePrimary, source)
	assert.NotNil(t, metrics, "empty collections stay array-shaped in JSON")
	assert.Empty(t, metrics)
}

func TestAppendTaskLocal_AssignsDistinctIDs(t *testing.T) {
	accessor, local := newTestAccessor(t, Stores{Tasks: &fakeTaskSource{err: errDown}})

	first, err := accessor.AppendTaskLocal(context.Background(), models.Task{Title: "one", Priority: models.TaskPriorityMedium})
	require.NoError(t, err)
	second, err := accessor.AppendTaskLocal(context.Background(), models.Task{Title: "two", Priority: models.TaskPriorityMedium})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	stored := localstore.Read[models.Task](context.Background(), local, "tasks")
	require.Len(t, stored, 2)
	assert.Equal(t, "one", stored[0].Title)
	assert.Equal(t, "two", stored[1].Title)
}

func TestAppendTaskLocal_SkipsTakenIdentifier(t *testing.T) {
	accessor, local := newTestAccessor(t, Stores{Tasks: &fakeTaskSource{err: errDown}})

	created, err := accessor.AppendTaskLocal(context.Background(), models.Task{Title: "one"})
	require.NoError(t, err)

	// Re-seed the document so the next timestamp-derived candidate could
	// collide with an existing identifier.
	seed := localstore.Read[models.Task](context.Background(), local, "tasks")
	require.NoError(t, localstore.Write(context.Background(), local, "tasks", append(seed, models.Task{ID: created.ID + "x", Title: "noise"})))

	again, err := accessor.AppendTaskLocal(context.Background(), models.Task{Title: "two"})
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, again.ID)
}
