package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/handler"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// RegisterUser registers the driver endpoints.  Booking and release
// change lot availability, so they purge the public cache on success.
func RegisterUser(e *echo.Echo, h *handler.UserHandler, s Stack) {
	mw := s.authed(model.RoleUser)
	write := append(append([]echo.MiddlewareFunc{}, mw...), s.invalidate())

	e.GET("/v1/lots/bookable", h.BookableLots, mw...)
	e.POST("/v1/lots/:id/book", h.Book, write...)
	e.POST("/v1/reservations/:id/release", h.Release, write...)
	e.GET("/v1/me/dashboard", h.Dashboard, mw...)
	e.GET("/v1/me/reservations", h.History, mw...)
}
