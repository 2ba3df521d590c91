package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for session endpoints. Handlers are thin:
// resolve the session, call the service, render the response.
type Handler struct {
	service Service
}

// NewHandler creates a new session handler backed by the given service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Info returns the caller's resolved session row (GET /api/session_info).
func (h *Handler) Info(c echo.Context) error {
	sess, err := RequireResolved(c, h.service)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

// Logout reverts the caller's session to anonymous (GET /api/logout).
// The cookie is kept -- the same session continues, unauthenticated.
func (h *Handler) Logout(c echo.Context) error {
	token := GetToken(c)
	if token != "" {
		if err := h.service.Deauthenticate(c.Request().Context(), token); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// DeleteCookies expires the client-side cookie (GET /api/delete_cookies).
// The session row is left behind; the next request gets a fresh session.
func (h *Handler) DeleteCookies(c echo.Context) error {
	ClearCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"status": "cookies cleared"})
}
