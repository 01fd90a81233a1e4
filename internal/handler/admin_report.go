package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Dashboard handles GET /v1/admin/dashboard.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	ov, err := h.Reports.Overview(ctx)
	if err != nil {
		return writeError(c, err, "failed to load dashboard")
	}
	return c.JSON(http.StatusOK, ov)
}

// History handles GET /v1/admin/history?status=all|active|completed.
func (h *AdminHandler) History(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	hist, err := h.Reports.History(ctx, c.QueryParam("status"))
	if err != nil {
		return writeError(c, err, "failed to load history")
	}
	return c.JSON(http.StatusOK, hist)
}

// Users handles GET /v1/admin/users.
func (h *AdminHandler) Users(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	users, err := h.Reports.Users(ctx)
	if err != nil {
		return writeError(c, err, "failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}
