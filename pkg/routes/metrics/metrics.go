package metrics

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/tracing"
)

// Register registers metric routes
func Register(g *echo.Group) {
	g.GET("", List)
}

// List returns all metrics
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "metric_handler.List")
	defer span.End()

	ctx, accessor, err := ectoinject.GetContext[*resolve.Accessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get accessor")
	}

	items, source := accessor.Metrics(ctx)
	c.Response().Header().Set("X-Data-Source", string(source))
	return c.JSON(http.StatusOK, items)
}
