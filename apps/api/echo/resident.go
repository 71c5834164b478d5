package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/resident"
)

type residentApi struct {
	svc *resident.Service
}

func registerResidentAPI(g *echo.Group, svc *resident.Service) {
	api := residentApi{svc: svc}

	rg := g.Group("/residents")
	rg.GET("", api.query)
	rg.POST("", api.create)

	// detail endpoints
	dg := rg.Group("/:id", objectMiddleware(func(ctx context.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx, id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

func contextResident(ctx echo.Context) (resident.Resident, error) {
	obj, err := contextObject(ctx)
	if err != nil {
		return resident.Resident{}, err
	}
	r, ok := obj.(resident.Resident)
	if !ok {
		return resident.Resident{}, errors.Wrap(errObjectNotInCtx, "asserting resident")
	}
	return r, nil
}

func (api *residentApi) query(ctx echo.Context) error {
	filter, err := resident.ParseFilter(queryParams(ctx))
	if err != nil {
		return err
	}
	residents, total, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying residents")
	}
	return respondList(ctx, residents, len(residents), core.NewPagination(filter.Page, total))
}

func (api *residentApi) create(ctx echo.Context) error {
	var data resident.NewResident
	if err := bind(ctx, &data, "NewResident"); err != nil {
		return err
	}
	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating resident")
	}
	return respond(ctx, http.StatusCreated, r)
}

func (api *residentApi) retrieve(ctx echo.Context) error {
	r, err := contextResident(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, r)
}

func (api *residentApi) update(ctx echo.Context) error {
	orig, err := contextResident(ctx)
	if err != nil {
		return err
	}
	var data resident.UpdateResident
	if err = bind(ctx, &data, "UpdateResident"); err != nil {
		return err
	}
	r, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating resident")
	}
	return respond(ctx, http.StatusOK, r)
}

func (api *residentApi) destroy(ctx echo.Context) error {
	r, err := contextResident(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting resident")
	}
	return ctx.NoContent(http.StatusNoContent)
}
