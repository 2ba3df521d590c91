package session

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the session endpoints on the given API group.
// The group already carries the EnsureSession gate.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/session_info", h.Info)
	g.GET("/logout", h.Logout)
	g.GET("/delete_cookies", h.DeleteCookies)
}
