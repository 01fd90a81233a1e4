package middleware

// identity.go holds the context keys set by JWTAuth and helpers that
// read them back for handlers, the rate limiter and the cache.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys written by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// UserID returns the authenticated user's ID, or false for guests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" for guests.
func Role(c echo.Context) string {
	r, _ := c.Get(ContextRole).(string)
	return r
}

// identityKey renders the caller for use in cache and rate limit keys.
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
