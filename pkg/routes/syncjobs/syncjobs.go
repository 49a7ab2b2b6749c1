package syncjobs

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/sync/cronsync"
	"github.com/kyberos/mission-control/pkg/sync/memorysync"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// Register registers the sync trigger route
func Register(g *echo.Group) {
	g.POST("", Run)
}

// RunResponse reports the outcome of both synchronizers
type RunResponse struct {
	Memories int `json:"memories"`
	CronJobs int `json:"cron_jobs"`
}

// Run invokes the memory and cron synchronizers once each
func Run(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "sync_handler.Run")
	defer span.End()

	ctx, memSync, err := ectoinject.GetContext[*memorysync.Synchronizer](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get memory synchronizer")
	}

	ctx, cronSync, err := ectoinject.GetContext[*cronsync.Synchronizer](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get cron synchronizer")
	}

	memResult, err := memSync.Sync(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "memory sync failed")
	}

	cronResult, err := cronSync.Sync(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "cron sync failed")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitSyncCompleted(ctx, "memory", memResult.Synced)
		emitter.EmitSyncCompleted(ctx, "cron", cronResult.Synced)
	}

	return c.JSON(http.StatusOK, RunResponse{
		Memories: memResult.Synced,
		CronJobs: cronResult.Synced,
	})
}
