package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core/room"
)

type (
	roomApi struct {
		svc *room.Service
	}

	AssignRequest struct {
		ResidentIDs *[]string `json:"residentIds"`
	}
)

func registerRoomAPI(g *echo.Group, svc *room.Service) {
	api := roomApi{svc: svc}

	rg := g.Group("/rooms")
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.PUT("/:id/occupants", api.assign)

	// detail endpoints
	dg := rg.Group("/:id", objectMiddleware(func(ctx context.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx, id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

func contextRoom(ctx echo.Context) (room.Room, error) {
	obj, err := contextObject(ctx)
	if err != nil {
		return room.Room{}, err
	}
	r, ok := obj.(room.Room)
	if !ok {
		return room.Room{}, errors.Wrap(errObjectNotInCtx, "asserting room")
	}
	return r, nil
}

func (api *roomApi) query(ctx echo.Context) error {
	var filter room.QueryFilter
	if err := bind(ctx, &filter, "room.QueryFilter"); err != nil {
		return err
	}
	rooms, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	return respondList(ctx, rooms, len(rooms), nil)
}

func (api *roomApi) create(ctx echo.Context) error {
	var data room.NewRoom
	if err := bind(ctx, &data, "NewRoom"); err != nil {
		return err
	}
	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return respond(ctx, http.StatusCreated, r)
}

func (api *roomApi) retrieve(ctx echo.Context) error {
	r, err := contextRoom(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, r)
}

func (api *roomApi) update(ctx echo.Context) error {
	orig, err := contextRoom(ctx)
	if err != nil {
		return err
	}
	var data room.UpdateRoom
	if err = bind(ctx, &data, "UpdateRoom"); err != nil {
		return err
	}
	r, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating room")
	}
	return respond(ctx, http.StatusOK, r)
}

func (api *roomApi) destroy(ctx echo.Context) error {
	r, err := contextRoom(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// assign replaces the occupants of the room with exactly the given residents.
func (api *roomApi) assign(ctx echo.Context) error {
	var data AssignRequest
	if err := bind(ctx, &data, "AssignRequest"); err != nil {
		return err
	}
	r, err := api.svc.Assign(ctx.Request().Context(), ctx.Param("id"), data.ResidentIDs)
	if err != nil {
		return errors.Wrap(err, "assigning occupants")
	}
	return respond(ctx, http.StatusOK, r)
}
