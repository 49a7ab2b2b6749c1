package team

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/internal/repositories/teammember"
	"github.com/kyberos/mission-control/pkg/events"
	"github.com/kyberos/mission-control/pkg/models"
	"github.com/kyberos/mission-control/pkg/resolve"
	"github.com/kyberos/mission-control/pkg/tracing"
)

var validate = validator.New()

// Register registers team status routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.PATCH("", Update)
}

// List returns team members ordered by name
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "team_handler.List")
	defer span.End()

	filter := models.TeamFilter{
		Status:     c.QueryParam("status"),
		Department: c.QueryParam("department"),
	}

	ctx, accessor, err := ectoinject.GetContext[*resolve.Accessor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get accessor")
	}

	members, source := accessor.TeamMembers(ctx, filter)
	c.Response().Header().Set("X-Data-Source", string(source))
	return c.JSON(http.StatusOK, members)
}

// Update patches a team member's status or current task
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "team_handler.Update")
	defer span.End()

	id := c.QueryParam("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	var req models.UpdateTeamMemberRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*teammember.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	updated, err := repo.Update(ctx, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update team member")
	}
	if updated == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "team member not found")
	}

	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil {
		emitter.EmitUpdated(ctx, events.RecordTypeTeamMember, updated.ID, updated)
	}

	return c.JSON(http.StatusOK, updated)
}
