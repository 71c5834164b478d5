package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core/schedule"
	"github.com/trezcool/foyer/core/staff"
)

type staffApi struct {
	svc         *staff.Service
	scheduleSvc *schedule.Service
}

func registerStaffAPI(g *echo.Group, svc *staff.Service, scheduleSvc *schedule.Service) {
	api := staffApi{svc: svc, scheduleSvc: scheduleSvc}

	sg := g.Group("/staff")
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id", objectMiddleware(func(ctx context.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx, id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.GET("/schedule", api.schedule)
}

func contextStaff(ctx echo.Context) (staff.Staff, error) {
	obj, err := contextObject(ctx)
	if err != nil {
		return staff.Staff{}, err
	}
	s, ok := obj.(staff.Staff)
	if !ok {
		return staff.Staff{}, errors.Wrap(errObjectNotInCtx, "asserting staff")
	}
	return s, nil
}

func (api *staffApi) query(ctx echo.Context) error {
	var filter staff.QueryFilter
	if err := bind(ctx, &filter, "staff.QueryFilter"); err != nil {
		return err
	}
	members, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	return respondList(ctx, members, len(members), nil)
}

func (api *staffApi) create(ctx echo.Context) error {
	var data staff.NewStaff
	if err := bind(ctx, &data, "NewStaff"); err != nil {
		return err
	}
	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating staff")
	}
	return respond(ctx, http.StatusCreated, s)
}

func (api *staffApi) retrieve(ctx echo.Context) error {
	s, err := contextStaff(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, s)
}

func (api *staffApi) update(ctx echo.Context) error {
	orig, err := contextStaff(ctx)
	if err != nil {
		return err
	}
	var data staff.UpdateStaff
	if err = bind(ctx, &data, "UpdateStaff"); err != nil {
		return err
	}
	s, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating staff")
	}
	return respond(ctx, http.StatusOK, s)
}

func (api *staffApi) destroy(ctx echo.Context) error {
	s, err := contextStaff(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// schedule returns the week of the staff member, monday first.
func (api *staffApi) schedule(ctx echo.Context) error {
	s, err := contextStaff(ctx)
	if err != nil {
		return err
	}
	entries, err := api.scheduleSvc.ListByStaff(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "listing schedule")
	}
	return respondList(ctx, entries, len(entries), nil)
}
