// Package router wires handlers to paths.  Each Register function owns
// one audience: guests, any signed-in account, drivers or admins.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/handler"
	"github.com/iliyamo/parking-lot-reservation/internal/middleware"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// Stack holds the cross-cutting middleware shared by the route groups.
// Nil fields are treated as pass-through.
type Stack struct {
	JWTSecret  string
	RateLimit  echo.MiddlewareFunc // token bucket, runs after JWTAuth where present
	Cache      echo.MiddlewareFunc // response cache for public reads
	Invalidate echo.MiddlewareFunc // cache purge after successful writes
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func (s Stack) rateLimit() echo.MiddlewareFunc {
	if s.RateLimit == nil {
		return passThrough
	}
	return s.RateLimit
}

func (s Stack) cache() echo.MiddlewareFunc {
	if s.Cache == nil {
		return passThrough
	}
	return s.Cache
}

func (s Stack) invalidate() echo.MiddlewareFunc {
	if s.Invalidate == nil {
		return passThrough
	}
	return s.Invalidate
}

// authed returns the middleware chain for a signed-in route restricted
// to roles.
func (s Stack) authed(roles ...string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(s.JWTSecret),
		middleware.RequireRole(roles...),
		s.rateLimit(),
	}
}

// RegisterRoutes registers the probes.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// RegisterAuth registers account routes.  register, login, refresh and
// logout work without an access token; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, s Stack) {
	g := e.Group("/v1/auth", s.rateLimit())
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, s.authed(model.RoleAdmin, model.RoleUser)...)
}

// RegisterPublic registers guest browse endpoints.  Both are cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, s Stack) {
	e.GET("/v1/lots", p.ListLots, s.rateLimit(), s.cache())
	e.GET("/v1/lots/:id", p.GetLot, s.rateLimit(), s.cache())
}
