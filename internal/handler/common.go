package handler // handler defines http handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/service"
)

// requestTimeout bounds every database round trip made by a handler.
const requestTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// fail writes the {"error": msg} body shared by every endpoint.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

func unauthorized(c echo.Context) error { return fail(c, http.StatusUnauthorized, "unauthorized") }

// writeError maps a service failure onto an HTTP status.  Anything that
// is not a *service.Error is logged and reported as 500 with the
// caller-supplied message.
func writeError(c echo.Context, err error, fallback string) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}
	var se *service.Error
	if status == http.StatusInternalServerError || !errors.As(err, &se) {
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return fail(c, http.StatusInternalServerError, fallback)
	}
	body := echo.Map{"error": se.Message}
	if se.Details != nil {
		body["details"] = se.Details
	}
	return c.JSON(status, body)
}
