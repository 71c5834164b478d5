package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}

	dg := g.Group("/dashboard")
	dg.GET("/stats", api.stats)
	dg.GET("/quick-stats", api.quickStats)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return respond(ctx, http.StatusOK, stats)
}

func (api *dashboardApi) quickStats(ctx echo.Context) error {
	stats, err := api.svc.QuickStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing quick stats")
	}
	return respond(ctx, http.StatusOK, stats)
}
