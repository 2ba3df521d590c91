package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tallyhq/tally/internal/apperror"
	"github.com/tallyhq/tally/internal/session"
)

// targetUserHeader carries the id of the user to delete on delete_user calls.
const targetUserHeader = "X-User-ID"

// Handler handles HTTP requests for user operations. Handlers are thin:
// bind the request, call the service, render the response. No business
// logic lives here.
type Handler struct {
	service Service
}

// NewHandler creates a new user handler backed by the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register creates an account and logs the caller in (POST /api/register).
func (h *Handler) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	u, err := h.service.Register(c.Request().Context(), req.Name, req.Password, session.GetToken(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, u)
}

// Login authenticates the caller's session (POST /api/login).
func (h *Handler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	u, err := h.service.Login(c.Request().Context(), req.Name, req.Password, session.GetToken(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, u)
}

// List returns all registered users (GET /api/get_users).
func (h *Handler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context(), session.GetToken(c))
	if err != nil {
		return err
	}
	if users == nil {
		users = []User{}
	}
	return c.JSON(http.StatusOK, map[string][]User{"users": users})
}

// Delete removes the user named by the X-User-ID header (POST /api/delete_user).
func (h *Handler) Delete(c echo.Context) error {
	raw := c.Request().Header.Get(targetUserHeader)
	if raw == "" {
		return apperror.NewBadRequest("missing " + targetUserHeader + " header")
	}
	targetID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return apperror.NewBadRequest("invalid " + targetUserHeader + " header")
	}

	if err := h.service.Delete(c.Request().Context(), session.GetToken(c), targetID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
