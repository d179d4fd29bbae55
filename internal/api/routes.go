package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vijayKota2776/Codeplay/internal/collab"
)

// NewRouter assembles the echo instance: logging and panic recovery on
// everything, auth on the lab and run routes, none on the collaboration
// socket (clients join rooms unauthenticated).
func NewRouter(h *Handler, ws *collab.Handler, authMW echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", h.Health)
	e.GET("/ws", ws.Serve)

	labs := e.Group("/api/labs", authMW)
	labs.POST("", h.CreateLab)
	labs.GET("/:labId/files", h.GetFiles)
	labs.POST("/:labId/files", h.UpsertFile)
	labs.PUT("/:labId/files", h.PutFile)
	labs.DELETE("/:labId", h.DeleteLab)

	ide := e.Group("/api/ide", authMW)
	ide.POST("/run", h.RunCode)
	ide.GET("/run/:id", h.GetRun)

	return e
}
