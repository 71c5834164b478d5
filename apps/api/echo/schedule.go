package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/schedule"
)

type scheduleApi struct {
	svc *schedule.Service
}

func registerScheduleAPI(g *echo.Group, svc *schedule.Service) {
	api := scheduleApi{svc: svc}

	sg := g.Group("/schedules")
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id", objectMiddleware(func(ctx context.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx, id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

func contextEntry(ctx echo.Context) (schedule.Entry, error) {
	obj, err := contextObject(ctx)
	if err != nil {
		return schedule.Entry{}, err
	}
	e, ok := obj.(schedule.Entry)
	if !ok {
		return schedule.Entry{}, errors.Wrap(errObjectNotInCtx, "asserting schedule entry")
	}
	return e, nil
}

// query lists every entry, or the week of one staff member with ?staffId=.
func (api *scheduleApi) query(ctx echo.Context) error {
	staffID := core.CleanString(ctx.QueryParam("staffId"), true /* lower */)
	entries, err := api.svc.ListByStaff(ctx.Request().Context(), staffID)
	if err != nil {
		return errors.Wrap(err, "listing schedules")
	}
	return respondList(ctx, entries, len(entries), nil)
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewEntry
	if err := bind(ctx, &data, "NewEntry"); err != nil {
		return err
	}
	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule entry")
	}
	return respond(ctx, http.StatusCreated, e)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	e, err := contextEntry(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, e)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	orig, err := contextEntry(ctx)
	if err != nil {
		return err
	}
	var data schedule.UpdateEntry
	if err = bind(ctx, &data, "UpdateEntry"); err != nil {
		return err
	}
	e, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating schedule entry")
	}
	return respond(ctx, http.StatusOK, e)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	e, err := contextEntry(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), e.ID); err != nil {
		return errors.Wrap(err, "deleting schedule entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}
