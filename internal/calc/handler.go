package calc

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tallyhq/tally/internal/apperror"
	"github.com/tallyhq/tally/internal/session"
)

// Handler handles HTTP requests for calculator operations. Handlers are
// thin: bind the request, call the service, render the response.
type Handler struct {
	service Service
}

// NewHandler creates a new calc handler backed by the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Compute evaluates and records one calculation (POST /api/calculate).
func (h *Handler) Compute(c echo.Context) error {
	var req ComputeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	resp, err := h.service.Compute(c.Request().Context(), session.GetToken(c), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// History returns the caller's calculation history (GET /api/history).
func (h *Handler) History(c echo.Context) error {
	calcs, err := h.service.History(c.Request().Context(), session.GetToken(c))
	if err != nil {
		return err
	}
	if calcs == nil {
		calcs = []Calculation{}
	}
	return c.JSON(http.StatusOK, map[string][]Calculation{"history": calcs})
}
