package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/service"
)

// PublicHandler exposes read-only lot data to guests.
type PublicHandler struct {
	Inventory *service.Inventory
}

func NewPublicHandler(inv *service.Inventory) *PublicHandler {
	if inv == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Inventory: inv}
}

// ListLots handles GET /v1/lots.
func (h *PublicHandler) ListLots(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	lots, err := h.Inventory.ListLots(ctx)
	if err != nil {
		return writeError(c, err, "failed to list lots")
	}
	return c.JSON(http.StatusOK, lots)
}

// GetLot handles GET /v1/lots/:id.
func (h *PublicHandler) GetLot(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	lot, err := h.Inventory.GetLot(ctx, id)
	if err != nil {
		return writeError(c, err, "failed to load lot")
	}
	return c.JSON(http.StatusOK, lot)
}
