package session

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tallyhq/tally/internal/apperror"
)

// cookieName is the HTTP cookie used to store the session token.
const cookieName = "session_hash"

// contextKeyToken is the Echo context key holding the caller's session token.
const contextKeyToken = "session_token"

// EnsureSession returns the gate middleware wrapped around every API route.
// A request carrying a session cookie passes through with the token stored
// in context; a request without one never reaches the business handler --
// it is diverted to session issuance: a fresh row is minted, the cookie is
// set, and the new session is returned as the response. The client resubmits
// with the cookie to reach the real handlers.
//
// Only cookie presence is checked here. Deeper validity is re-checked inside
// each handler via Service.Resolve, which also consults the Redis cache.
func EnsureSession(service Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := GetToken(c)
			if token != "" {
				c.Set(contextKeyToken, token)
				return next(c)
			}

			sess, err := service.Issue(c.Request().Context())
			if err != nil {
				return err
			}

			SetCookie(c, sess.Hash)
			return c.JSON(http.StatusOK, sess)
		}
	}
}

// RequireResolved is a handler-level helper: it resolves the caller's session
// through the service and returns apperror.Unauthorized when the cookie value
// doesn't match any row.
func RequireResolved(c echo.Context, service Service) (*Session, error) {
	token := GetToken(c)
	if token == "" {
		return nil, apperror.NewUnauthorized("no session")
	}
	return service.Resolve(c.Request().Context(), token)
}

// GetToken reads the session token from the request cookie.
func GetToken(c echo.Context) string {
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// SetCookie attaches the session token to the response. The cookie is
// HttpOnly (JS can't read it), Secure if behind TLS, and SameSite=Lax.
func SetCookie(c echo.Context, token string) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie by setting MaxAge to -1. Only the
// client-side cookie is cleared; the session row stays in the database.
func ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
