package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type spotReq struct {
	SpotNumber string `json:"spot_number"`
}

type bulkSpotReq struct {
	Action  string   `json:"action"`
	SpotIDs []uint64 `json:"spot_ids"`
}

// ListSpots handles GET /v1/admin/lots/:id/spots.
func (h *AdminHandler) ListSpots(c echo.Context) error {
	lotID, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	spots, err := h.Inventory.ListSpots(ctx, lotID)
	if err != nil {
		return writeError(c, err, "failed to list spots")
	}
	return c.JSON(http.StatusOK, spots)
}

// AddSpot handles POST /v1/admin/lots/:id/spots.
func (h *AdminHandler) AddSpot(c echo.Context) error {
	lotID, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	var req spotReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	spot, err := h.Inventory.AddSpot(ctx, lotID, req.SpotNumber)
	if err != nil {
		return writeError(c, err, "failed to add spot")
	}
	return c.JSON(http.StatusCreated, spot)
}

// BulkSpots handles POST /v1/admin/lots/:id/spots/bulk.  Only the
// "delete" action exists; an occupied spot in the selection rejects the
// whole batch with 409.
func (h *AdminHandler) BulkSpots(c echo.Context) error {
	lotID, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	var req bulkSpotReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	n, err := h.Inventory.BulkSpotAction(ctx, lotID, req.SpotIDs, req.Action)
	if err != nil {
		return writeError(c, err, "failed to apply bulk action")
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// RenameSpot handles PUT /v1/admin/spots/:id.
func (h *AdminHandler) RenameSpot(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid spot id")
	}
	var req spotReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	spot, err := h.Inventory.RenameSpot(ctx, id, req.SpotNumber)
	if err != nil {
		return writeError(c, err, "failed to rename spot")
	}
	return c.JSON(http.StatusOK, spot)
}

// DeleteSpot handles DELETE /v1/admin/spots/:id.
func (h *AdminHandler) DeleteSpot(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid spot id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Inventory.DeleteSpot(ctx, id); err != nil {
		return writeError(c, err, "failed to delete spot")
	}
	return c.NoContent(http.StatusNoContent)
}
