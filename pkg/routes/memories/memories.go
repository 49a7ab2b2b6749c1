package memories

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/internal/repositories/memory"
	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/sync/memorysync"
	"github.com/kyberos/mission-control/pkg/tracing"
)

var validate = validator.New()

// Register registers memory note routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
}

// List returns memory notes, newest first. Supports type and category
// filters plus a free-text search over content and category.
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "memory_handler.List")
	defer span.End()

	filter := models.MemoryFilter{
		Type:     c.QueryParam("type"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}

	ctx, accessor, err := ectoinject.GetContext[*resolve.Accessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get accessor")
	}

	memories, source := accessor.Memories(ctx, filter)
	c.Response().Header().Set("X-Data-Source", string(source))
	return c.JSON(http.StatusOK, memories)
}

// Create creates a memory note, or runs the filesystem synchronizer when
// called with ?action=sync.
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "memory_handler.Create")
	defer span.End()

	if c.QueryParam("action") == "sync" {
		return runSync(c)
	}

	var req models.CreateMemoryRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid date")
	}

	ctx, repo, err := ectoinject.GetContext[*memory.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	created, err := repo.Create(ctx, &models.Memory{
		Type:     models.NormalizeMemoryType(models.MemoryType(req.Type)),
		Content:  req.Content,
		Category: req.Category,
		Date:     date,
		Source:   req.Source,
	})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create memory")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitCreated(ctx, events.RecordTypeMemory, created.ID, created)
	}

	return c.JSON(http.StatusCreated, created)
}

func runSync(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "memory_handler.runSync")
	defer span.End()

	ctx, sync, err := ectoinject.GetContext[*memorysync.Synchronizer](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get synchronizer")
	}

	result, err := sync.Sync(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "memory sync failed")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitSyncCompleted(ctx, "memory", result.Synced)
	}

	return c.JSON(http.StatusOK, result)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
