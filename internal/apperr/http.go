package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the JSON body written for every failed request.
type Response struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Write renders err as JSON. Internal errors never leak their cause.
func Write(c echo.Context, err error) error {
	e := As(err)
	msg := e.Message
	if e.HTTPStatus >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.JSON(e.HTTPStatus, Response{Error: msg, Code: e.Code, Fields: e.Fields})
}

// HTTPErrorHandler replaces echo's default handler so that framework
// errors (404 route misses, 405, bind failures) share the same body shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, Response{Error: msg})
		return
	}
	_ = Write(c, err)
}
