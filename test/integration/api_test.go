package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyberos/mission-control/internal/repositories/task"
	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/localstore"
	"github.com/kyberos/mission-control/pkg/middleware"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/routes/login"
	"github.com/kyberos/mission-control/pkg/routes/memories"
	"github.com/kyberos/mission-control/pkg/routes/metrics"
	"github.com/kyberos/mission-control/pkg/routes/syncjobs"
	"github.com/kyberos/mission-control/pkg/routes/tasks"
	"github.com/kyberos/mission-control/pkg/sync/cronsync"
	"github.com/kyberos/mission-control/pkg/sync/memorysync"
)

const testPassword = "hunter2"

var errDown = errors.New("connection refused")

// Every primary source is unreachable so the API serves from the local
// document. This is the degraded mode the accessor exists for.
type downTasks struct{}

func (downTasks) List(context.Context, models.TaskFilter) ([]models.Task, error) {
	return nil, errDown
}

type downContent struct{}

func (downContent) List(context.Context, models.ContentFilter) ([]models.ContentItem, error) {
	return nil, errDown
}

type downCalendar struct{}

func (downCalendar) List(context.Context, models.CalendarFilter) ([]models.CalendarEvent, error) {
	return nil, errDown
}

type downMemories struct{}

func (downMemories) List(context.Context, models.MemoryFilter) ([]models.Memory, error) {
	return nil, errDown
}

type downTeam struct{}

func (downTeam) List(context.Context, models.TeamFilter) ([]models.TeamMember, error) {
	return nil, errDown
}

type downMetrics struct{}

func (downMetrics) List(context.Context) ([]models.Metric, error) {
	return nil, errDown
}

type downProjects struct{}

func (downProjects) List(context.Context) ([]models.Project, error) {
	return nil, errDown
}

// downDB fails every query so repository writes take the local-document path.
type downDB struct{}

func (downDB) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, errDown }
func (downDB) GetContext(context.Context, any, string, ...any) error           { return errDown }
func (downDB) SelectContext(context.Context, any, string, ...any) error        { return errDown }
func (downDB) QueryRowContext(context.Context, string, ...any) *sql.Row        { return nil }
func (downDB) PingContext(context.Context) error                               { return errDown }
func (downDB) Ping() error                                                     { return errDown }
func (downDB) Close() error                                                    { return nil }

type fakeMemoryStore struct {
	bySource map[string]*models.Memory
}

func (f *fakeMemoryStore) GetBySource(_ context.Context, source string) (*models.Memory, error) {
	return f.bySource[source], nil
}

func (f *fakeMemoryStore) Create(_ context.Context, memory *models.Memory) (*models.Memory, error) {
	f.bySource[memory.Source] = memory
	return memory, nil
}

type fakeEventStore struct {
	byKey map[string]*models.CalendarEvent
}

func (f *fakeEventStore) GetByTitleAndSource(_ context.Context, title, source string) (*models.CalendarEvent, error) {
	return f.byKey[title+"|"+source], nil
}

func (f *fakeEventStore) Create(_ context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	f.byKey[event.Title+"|"+event.Source] = event
	return event, nil
}

// TestAPIHelpers contains helper functions for API testing
type TestAPIHelpers struct {
	t      *testing.T
	e      *echo.Echo
	cookie *http.Cookie
}

func NewTestAPIHelpers(t *testing.T) *TestAPIHelpers {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	dataDir := filepath.Join(t.TempDir(), "data")
	local := localstore.New(dataDir, logger)

	ctx := context.Background()
	require.NoError(t, localstore.Write(ctx, local, "tasks", []models.Task{
		{ID: "t-1", Title: "Write launch notes", Assignee: "andrew", Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium, CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "t-2", Title: "Rotate API keys", Assignee: "claw", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityUrgent, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}))
	require.NoError(t, localstore.Write(ctx, local, "metrics", []models.Metric{
		{ID: "m-1", Key: "mrr", ValueNum: f64(1200)},
	}))
	require.NoError(t, localstore.Write(ctx, local, "memories", []models.Memory{
		{ID: "n-1", Type: models.MemoryTypePreference, Content: "Andrew prefers async standups", Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Source: "seed"},
	}))

	accessor := resolve.NewAccessor(resolve.Stores{
		Tasks:    downTasks{},
		Content:  downContent{},
		Calendar: downCalendar{},
		Memories: downMemories{},
		Team:     downTeam{},
		Metrics:  downMetrics{},
		Projects: downProjects{},
	}, local, logger, nil)

	memoryDir := filepath.Join(t.TempDir(), "memory")
	require.NoError(t, os.MkdirAll(memoryDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(memoryDir, "2026-02-10-notes.md"), []byte("standup moved to 10am"), 0o644))

	memSync := memorysync.New(memoryDir, &fakeMemoryStore{bySource: map[string]*models.Memory{}}, logger)
	cronSync := cronsync.New(filepath.Join(t.TempDir(), "crontab"), &fakeEventStore{byKey: map[string]*models.CalendarEvent{}}, logger)
	emitter := events.NewEmitter(nil, logger)
	taskRepo := task.NewRepository(downDB{}, logger)

	// Each helper gets its own container; registering against the default
	// one would collide across tests in the package.
	containerID := "api-test-" + uuid.NewString()
	container, err := ectoinject.NewDIContainer(ectocontainer.DIContainerConfig{ID: containerID})
	require.NoError(t, err)
	require.NoError(t, ectoinject.RegisterInstance[*resolve.Accessor](container, accessor))
	require.NoError(t, ectoinject.RegisterInstance[*task.Repository](container, taskRepo))
	require.NoError(t, ectoinject.RegisterInstance[*memorysync.Synchronizer](container, memSync))
	require.NoError(t, ectoinject.RegisterInstance[*cronsync.Synchronizer](container, cronSync))
	require.NoError(t, ectoinject.RegisterInstance[*events.Emitter](container, emitter))

	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, err := ectoinject.SetActiveContainer(c.Request().Context(), containerID)
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	e.Use(middleware.Context())
	e.Use(middleware.Authentication(logger, testPassword))

	login.Register(e.Group("/api/login"), testPassword)
	tasks.Register(e.Group("/api/tasks"))
	metrics.Register(e.Group("/api/metrics"))
	memories.Register(e.Group("/api/memories"))
	syncjobs.Register(e.Group("/api/sync"))

	return &TestAPIHelpers{t: t, e: e}
}

func f64(v float64) *float64 {
	return &v
}

func (h *TestAPIHelpers) MakeRequest(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}

	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

// Login authenticates the helper so later requests carry the session cookie.
func (h *TestAPIHelpers) Login() {
	rec := h.MakeRequest(http.MethodPost, "/api/login", map[string]any{"password": testPassword})
	require.Equal(h.t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.AuthCookieName {
			h.cookie = cookie
			return
		}
	}
	h.t.Fatal("login response did not set the auth cookie")
}

func TestAPI_AuthGate(t *testing.T) {
	h := NewTestAPIHelpers(t)

	t.Run("RejectsAnonymousRequests", func(t *testing.T) {
		rec := h.MakeRequest(http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("AcceptsPasswordQueryParam", func(t *testing.T) {
		rec := h.MakeRequest(http.MethodGet, "/api/tasks?pw="+testPassword, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("AcceptsSessionCookie", func(t *testing.T) {
		h.Login()
		rec := h.MakeRequest(http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAPI_TasksServeFromLocalDocument(t *testing.T) {
	h := NewTestAPIHelpers(t)
	h.Login()

	rec := h.MakeRequest(http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", rec.Header().Get("X-Data-Source"))

	var got []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	// urgent outranks medium regardless of creation time
	assert.Equal(t, "t-2", got[0].ID)
	assert.Equal(t, "t-1", got[1].ID)
}

func TestAPI_TasksFilterByStatus(t *testing.T) {
	h := NewTestAPIHelpers(t)
	h.Login()

	rec := h.MakeRequest(http.MethodGet, "/api/tasks?status=IN_PROGRESS", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Rotate API keys", got[0].Title)
}

func TestAPI_TaskCreateFallsBackToLocalDocument(t *testing.T) {
	h := NewTestAPIHelpers(t)
	h.Login()

	rec := h.MakeRequest(http.MethodPost, "/api/tasks", map[string]any{"title": "Review inbox"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.TaskWriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Fallback)
	assert.Equal(t, "Review inbox", got.Title)
	assert.Equal(t, "ANDREW", got.Assignee, "omitted assignee defaults to the owner")
	assert.Equal(t, models.TaskStatusTodo, got.Status)
	assert.Equal(t, models.TaskPriorityMedium, got.Priority)
	assert.Contains(t, got.ID, "local-")

	// the local-only task is readable through the fallback tier
	list := h.MakeRequest(http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var listed []models.Task
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
	require.Len(t, listed, 3)
}

func TestAPI_MetricsServeFromLocalDocument(t *testing.T) {
	h := NewTestAPIHelpers(t)
	h.Login()

	rec := h.MakeRequest(http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", rec.Header().Get("X-Data-Source"))

	var got []models.Metric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "mrr", got[0].Key)
}

func TestAPI_MemorySearch(t *testing.T) {
	h := NewTestAPIHelpers(t)
	h.Login()

	rec := h.MakeRequest(http.MethodGet, "/api/memories?search=standup", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Memory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, models.MemoryTypePreference, got[0].Type)

	rec = h.MakeRequest(http.MethodGet, "/api/memories?search=retro", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got)
}

func TestAPI_SyncRunsBothJobs(t *testing.T) {
	h := NewTestAPIHelpers(t)
	h.Login()

	rec := h.MakeRequest(http.MethodPost, "/api/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got syncjobs.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Memories, "one markdown note on disk")
	// no crontab file, so only the built-in schedules are synced
	assert.Equal(t, 5, got.CronJobs)

	// running again is idempotent
	rec = h.MakeRequest(http.MethodPost, "/api/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Memories)
	assert.Equal(t, 5, got.CronJobs)

	rec = h.MakeRequest(http.MethodGet, "/api/sync", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAPI_LoginValidation(t *testing.T) {
	h := NewTestAPIHelpers(t)

	cases := []struct {
		name     string
		body     any
		expected int
	}{
		{"WrongPassword", map[string]any{"password": "guess"}, http.StatusUnauthorized},
		{"MissingPassword", map[string]any{}, http.StatusBadRequest},
		{"CorrectPassword", map[string]any{"password": testPassword}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.MakeRequest(http.MethodPost, "/api/login", tc.body)
			assert.Equal(t, tc.expected, rec.Code, fmt.Sprintf("body: %s", rec.Body.String()))
		})
	}
}
