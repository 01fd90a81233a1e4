package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/handler"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// RegisterAdmin registers ADMIN endpoints under /v1/admin.  Every
// successful write purges the public lot cache.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, s Stack) {
	mw := append(s.authed(model.RoleAdmin), s.invalidate())
	g := e.Group("/v1/admin", mw...)

	// ---- Lots ----
	g.GET("/lots", h.ListLots)
	g.POST("/lots", h.CreateLot)
	g.POST("/lots/bulk-delete", h.BulkDeleteLots)
	g.PUT("/lots/:id", h.UpdateLot)
	g.PATCH("/lots/:id", h.UpdateLot)
	g.PUT("/lots/:id/capacity", h.ResizeLot)
	g.DELETE("/lots/:id", h.DeleteLot)

	// ---- Spots ----
	g.GET("/lots/:id/spots", h.ListSpots)
	g.POST("/lots/:id/spots", h.AddSpot)
	g.POST("/lots/:id/spots/bulk", h.BulkSpots)
	g.PUT("/spots/:id", h.RenameSpot)
	g.PATCH("/spots/:id", h.RenameSpot)
	g.DELETE("/spots/:id", h.DeleteSpot)

	// ---- Reports ----
	g.GET("/dashboard", h.Dashboard)
	g.GET("/history", h.History)
	g.GET("/users", h.Users)
}
