package sitebuilder

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	// ErrNotFound is returned when a requested row does not exist, or a scoped
	// update or delete matched zero rows.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert collides with an existing key.
	ErrConflict = errors.New("already exists")
)

// apiError is the JSON error body for /api routes.
type apiError struct {
	Error string `json:"error"`
}

// httpErrorHandler keeps client errors as-is, maps ErrNotFound to 404 and
// collapses every other failure to a generic 500. HTML routes get rendered error pages instead of JSON.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if errors.Is(err, ErrNotFound) {
		code, msg = http.StatusNotFound, "Not found"
	} else if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		a.Log.Errorw("server error",
			"error", err,
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}

	if isHTMLRoute(c.Request().URL.Path) {
		if code == http.StatusNotFound {
			_ = RenderStatus(c, code, a.Views.NotFound())
		} else if code >= http.StatusInternalServerError {
			_ = RenderStatus(c, code, a.Views.ServerError())
		} else {
			_ = c.String(code, msg)
		}
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, apiError{Error: msg})
}

func isHTMLRoute(path string) bool {
	return strings.HasPrefix(path, "/s/")
}
