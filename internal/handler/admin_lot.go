package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/service"
)

// AdminHandler serves the ADMIN-only inventory and reporting endpoints.
// JWTAuth and RequireRole(ADMIN) run before every method.
type AdminHandler struct {
	Inventory *service.Inventory
	Reports   *service.Reports
}

// NewAdminHandler panics if a dependency is nil.
func NewAdminHandler(inv *service.Inventory, rep *service.Reports) *AdminHandler {
	if inv == nil || rep == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Inventory: inv, Reports: rep}
}

type resizeReq struct {
	MaxSpots int `json:"max_spots"`
}

type idsReq struct {
	IDs []uint64 `json:"ids"`
}

// ListLots handles GET /v1/admin/lots.
func (h *AdminHandler) ListLots(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	lots, err := h.Inventory.ListLots(ctx)
	if err != nil {
		return writeError(c, err, "failed to list lots")
	}
	return c.JSON(http.StatusOK, lots)
}

// CreateLot handles POST /v1/admin/lots and returns 201 with the lot.
func (h *AdminHandler) CreateLot(c echo.Context) error {
	var req service.LotInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	lot, err := h.Inventory.CreateLot(ctx, req)
	if err != nil {
		return writeError(c, err, "failed to create lot")
	}
	return c.JSON(http.StatusCreated, lot)
}

// UpdateLot handles PUT/PATCH /v1/admin/lots/:id.  The body carries the
// full lot form including max_spots, which resizes the lot.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	var req service.LotInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	lot, err := h.Inventory.UpdateLot(ctx, id, req)
	if err != nil {
		return writeError(c, err, "failed to update lot")
	}
	return c.JSON(http.StatusOK, lot)
}

// ResizeLot handles PUT /v1/admin/lots/:id/capacity.
func (h *AdminHandler) ResizeLot(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	var req resizeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	lot, err := h.Inventory.ResizeLot(ctx, id, req.MaxSpots)
	if err != nil {
		return writeError(c, err, "failed to resize lot")
	}
	return c.JSON(http.StatusOK, lot)
}

// DeleteLot handles DELETE /v1/admin/lots/:id.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Inventory.DeleteLot(ctx, id); err != nil {
		return writeError(c, err, "failed to delete lot")
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkDeleteLots handles POST /v1/admin/lots/bulk-delete with {"ids": [...]}.
// Lots with occupied spots are reported in "failures" and left in place.
func (h *AdminHandler) BulkDeleteLots(c echo.Context) error {
	var req idsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Inventory.BulkDeleteLots(ctx, req.IDs)
	if err != nil {
		return writeError(c, err, "failed to delete lots")
	}
	return c.JSON(http.StatusOK, res)
}
