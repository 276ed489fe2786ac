package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

const msgUnknownError = "An unknown error has occured"

// ErrorHandler answers every failed request with a plain text body. Errors
// that are not echo.HTTPErrors are logged and reported as a generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgUnknownError

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = http.StatusText(code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if code >= http.StatusInternalServerError {
			c.Logger().Error(err)
		}
	} else {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.String(code, msg)
	}
	if werr != nil {
		c.Logger().Error(werr)
	}
}
