package calc

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the calculator endpoints on the given API group.
// The group already carries the EnsureSession gate.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.POST("/calculate", h.Compute)
	g.GET("/history", h.History)
}
