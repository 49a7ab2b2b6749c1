package tasks

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/internal/repositories/task"
	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/tracing"
)

var validate = validator.New()

// Register registers task board routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.PATCH("", Update)
	g.DELETE("", Delete)
}

// List returns the task board, filtered by query params
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "task_handler.List")
	defer span.End()

	filter := models.TaskFilter{
		Status:   c.QueryParam("status"),
		Assignee: c.QueryParam("assignee"),
		Priority: c.QueryParam("priority"),
	}

	ctx, accessor, err := ectoinject.GetContext[*resolve.Accessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get accessor")
	}

	tasks, source := accessor.Tasks(ctx, filter)
	c.Response().Header().Set("X-Data-Source", string(source))
	return c.JSON(http.StatusOK, tasks)
}

// Create creates a task. When the primary store write fails the task is
// appended to the local document instead and the response carries
// fallback: true.
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "task_handler.Create")
	defer span.End()

	var req models.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	newTask := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		ExternalID:  req.ExternalID,
	}
	if req.Priority != "" {
		newTask.Priority = models.TaskPriority(req.Priority)
	}
	if newTask.Assignee == "" {
		newTask.Assignee = "ANDREW"
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid due_date")
		}
		newTask.DueDate = &due
	}

	ctx, repo, err := ectoinject.GetContext[*task.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, &newTask)
	if err != nil {
		ctx, accessor, accErr := ectoinject.GetContext[*resolve.Accessor](ctx)
		if accErr != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get accessor")
		}
		local, localErr := accessor.AppendTaskLocal(ctx, newTask)
		if localErr != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create task")
		}
		return c.JSON(http.StatusCreated, models.TaskWriteResponse{Task: local, Fallback: true})
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitCreated(ctx, events.RecordTypeTask, created.ID, created)
	}

	return c.JSON(http.StatusCreated, models.TaskWriteResponse{Task: *created})
}

// Update patches a task identified by the id query param
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "task_handler.Update")
	defer span.End()

	id := c.QueryParam("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	var req models.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*task.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	updated, err := repo.Update(ctx, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update task")
	}
	if updated == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "task not found")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitUpdated(ctx, events.RecordTypeTask, updated.ID, updated)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a task identified by the id query param
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "task_handler.Delete")
	defer span.End()

	id := c.QueryParam("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*task.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get task")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "task not found")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete task")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitDeleted(ctx, events.RecordTypeTask, id)
	}

	return c.NoContent(http.StatusNoContent)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
