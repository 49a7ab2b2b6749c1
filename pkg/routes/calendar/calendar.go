package calendar

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/internal/repositories/calendarevent"
	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/tracing"
)

var validate = validator.New()

// Register registers calendar routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.PATCH("", Update)
	g.DELETE("", Delete)
}

// List returns calendar events ordered by time
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "calendar_handler.List")
	defer span.End()

	filter := models.CalendarFilter{
		Status: c.QueryParam("status"),
		Source: c.QueryParam("source"),
	}

	ctx, accessor, err := ectoinject.GetContext[*resolve.Accessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get accessor")
	}

	calendarEvents, source := accessor.CalendarEvents(ctx, filter)
	c.Response().Header().Set("X-Data-Source", string(source))
	return c.JSON(http.StatusOK, calendarEvents)
}

// Create creates a manual calendar event
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "calendar_handler.Create")
	defer span.End()

	var req models.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*calendarevent.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, &models.CalendarEvent{
		Title:      req.Title,
		Time:       req.Time,
		Recurrence: req.Recurrence,
		Source:     req.Source,
		Color:      req.Color,
	})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create calendar event")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitCreated(ctx, events.RecordTypeCalendarEvent, created.ID, created)
	}

	return c.JSON(http.StatusCreated, created)
}

// Update patches a calendar event identified by the id query param
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "calendar_handler.Update")
	defer span.End()

	id := c.QueryParam("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	var req models.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*calendarevent.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	updated, err := repo.Update(ctx, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update calendar event")
	}
	if updated == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "calendar event not found")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitUpdated(ctx, events.RecordTypeCalendarEvent, updated.ID, updated)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a calendar event identified by the id query param
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "calendar_handler.Delete")
	defer span.End()

	id := c.QueryParam("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*calendarevent.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get calendar event")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "calendar event not found")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete calendar event")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitDeleted(ctx, events.RecordTypeCalendarEvent, id)
	}

	return c.NoContent(http.StatusNoContent)
}
