package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/middleware"
	"github.com/iliyamo/parking-lot-reservation/internal/service"
)

// UserHandler serves the driver endpoints: browsing bookable lots,
// booking and releasing a spot, and viewing one's own reservations.
// All methods assume JWTAuth and RequireRole(USER) already ran.
type UserHandler struct {
	Booking   *service.Booking
	Inventory *service.Inventory
}

func NewUserHandler(b *service.Booking, inv *service.Inventory) *UserHandler {
	if b == nil || inv == nil {
		panic("nil service passed to NewUserHandler")
	}
	return &UserHandler{Booking: b, Inventory: inv}
}

type bookReq struct {
	VehicleNumber string `json:"vehicle_number"`
}

// BookableLots handles GET /v1/lots/bookable.
func (h *UserHandler) BookableLots(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	lots, err := h.Inventory.ListBookableLots(ctx)
	if err != nil {
		return writeError(c, err, "failed to list lots")
	}
	return c.JSON(http.StatusOK, lots)
}

// Book handles POST /v1/lots/:id/book.  The first free spot of the lot
// is assigned; the response is the new ACTIVE reservation.
func (h *UserHandler) Book(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	lotID, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid lot id")
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Booking.BookSpot(ctx, userID, lotID, req.VehicleNumber)
	if err != nil {
		return writeError(c, err, "failed to book spot")
	}
	return c.JSON(http.StatusCreated, res)
}

// Release handles POST /v1/reservations/:id/release and returns the
// completed reservation with its cost.
func (h *UserHandler) Release(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := h.Booking.ReleaseSpot(ctx, userID, id)
	if err != nil {
		return writeError(c, err, "failed to release spot")
	}
	return c.JSON(http.StatusOK, res)
}

// Dashboard handles GET /v1/me/dashboard.
func (h *UserHandler) Dashboard(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	d, err := h.Booking.Dashboard(ctx, userID)
	if err != nil {
		return writeError(c, err, "failed to load dashboard")
	}
	return c.JSON(http.StatusOK, d)
}

// History handles GET /v1/me/reservations, newest first.
func (h *UserHandler) History(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Booking.History(ctx, userID)
	if err != nil {
		return writeError(c, err, "failed to load reservations")
	}
	return c.JSON(http.StatusOK, list)
}
