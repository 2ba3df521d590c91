package user

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tallyhq/tally/internal/middleware"
)

// RegisterRoutes sets up the user endpoints on the given API group.
// The group already carries the EnsureSession gate.
//
// Credential endpoints are rate-limited to slow brute-force and credential
// stuffing: 10 attempts per IP per minute for login, 5 for register.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	g.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))
	g.GET("/get_users", h.List)
	g.POST("/delete_user", h.Delete)
}
