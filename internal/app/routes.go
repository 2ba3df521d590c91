package app

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/tallyhq/tally/internal/calc"
	"github.com/tallyhq/tally/internal/session"
	"github.com/tallyhq/tally/internal/user"
)

// RegisterRoutes wires the feature repositories, services, and handlers,
// and sets up all application routes. This is the single place where all
// routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// --- Feature wiring ---

	sessionCache := session.NewCache(a.Redis, a.Config.SessionCacheTTL)
	sessionSvc := session.NewService(session.NewRepository(a.DB), sessionCache)
	userSvc := user.NewService(user.NewRepository(a.DB), sessionSvc)
	calcSvc := calc.NewService(calc.NewRepository(a.DB), sessionSvc)

	// --- Public routes ---

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Static pages and assets. The pages are plain HTML; their scripts call
	// the /api endpoints below.
	web := a.Config.WebRoot
	e.File("/", filepath.Join(web, "home.html"))
	e.File("/login", filepath.Join(web, "login.html"))
	e.File("/register", filepath.Join(web, "register.html"))
	e.File("/history", filepath.Join(web, "history.html"))
	e.File("/users", filepath.Join(web, "users.html"))
	e.Static("/data", filepath.Join(web, "data"))

	// --- API routes ---
	// Every API route sits behind the session gate: a request without a
	// session cookie is answered with a freshly issued session instead of
	// reaching its handler.
	api := e.Group("/api", session.EnsureSession(sessionSvc))

	session.RegisterRoutes(api, session.NewHandler(sessionSvc))
	user.RegisterRoutes(api, user.NewHandler(userSvc))
	calc.RegisterRoutes(api, calc.NewHandler(calcSvc))
}
