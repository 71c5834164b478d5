package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/foyer/core"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"  // client errors
	statusError   = "error" // server errors
)

type (
	envelope struct {
		Status     string           `json:"status"`
		Results    *int             `json:"results,omitempty"`
		Data       interface{}      `json:"data"`
		Pagination *core.Pagination `json:"pagination,omitempty"`
	}

	errorEnvelope struct {
		Status  string            `json:"status"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	}
)

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, envelope{Status: statusSuccess, Data: data})
}

// respondList sends a list with its size; pagination is omitted when nil.
func respondList(ctx echo.Context, data interface{}, results int, pagination *core.Pagination) error {
	return ctx.JSON(http.StatusOK, envelope{
		Status:     statusSuccess,
		Results:    &results,
		Data:       data,
		Pagination: pagination,
	})
}
