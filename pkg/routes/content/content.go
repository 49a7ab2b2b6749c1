package content

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/internal/repositories/content"
	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/tracing"
)

var validate = validator.New()

// Register registers content pipeline routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.PATCH("", Update)
	g.DELETE("", Delete)
}

// List returns the content pipeline, optionally filtered by stage
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "content_handler.List")
	defer span.End()

	filter := models.ContentFilter{
		Stage: c.QueryParam("stage"),
	}

	ctx, accessor, err := ectoinject.GetContext[*resolve.Accessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get accessor")
	}

	items, source := accessor.ContentItems(ctx, filter)
	c.Response().Header().Set("X-Data-Source", string(source))
	return c.JSON(http.StatusOK, items)
}

// Create creates a content item at the IDEA stage
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "content_handler.Create")
	defer span.End()

	var req models.CreateContentRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*content.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, &models.ContentItem{
		Title: req.Title,
		Stage: models.ContentStageIdea,
		Notes: req.Notes,
	})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create content item")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitCreated(ctx, events.RecordTypeContentItem, created.ID, created)
	}

	return c.JSON(http.StatusCreated, created)
}

// Update patches a content item identified by the id query param
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "content_handler.Update")
	defer span.End()

	id := c.QueryParam("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	var req models.UpdateContentRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*content.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	updated, err := repo.Update(ctx, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update content item")
	}
	if updated == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "content item not found")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitUpdated(ctx, events.RecordTypeContentItem, updated.ID, updated)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a content item identified by the id query param
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "content_handler.Delete")
	defer span.End()

	id := c.QueryParam("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*content.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get content item")
	}
	if existing == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "content item not found")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete content item")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitDeleted(ctx, events.RecordTypeContentItem, id)
	}

	return c.NoContent(http.StatusNoContent)
}
