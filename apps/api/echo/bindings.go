package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// queryParams flattens the query string, keeping the first value of each key.
func queryParams(ctx echo.Context) map[string]string {
	values := ctx.QueryParams()
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

// bind binds path params, the query string and the JSON body, if any.
func bind(ctx echo.Context, dest interface{}, name string) error {
	if err := ctx.Bind(dest); err != nil {
		return errors.Wrap(err, "binding to "+name)
	}
	return nil
}

func contextObject(ctx echo.Context) (interface{}, error) {
	obj := ctx.Get(contextObjectKey)
	if obj == nil {
		return nil, errors.Wrap(errObjectNotInCtx, "retrieving object from context")
	}
	return obj, nil
}
