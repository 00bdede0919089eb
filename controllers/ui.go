package controllers

import (
	"net/http"

	"modelhubweb/services"
	"modelhubweb/session"

	"github.com/labstack/echo/v4"
)

type UIController struct {
	Stats services.StatsServiceProvider
}

func (controller *UIController) UIRoutes(g *echo.Group) {
	g.GET("/ui", func(c echo.Context) error {
		s := currentSession(c)
		return c.JSON(http.StatusOK, echo.Map{
			"user":    currentUser(c),
			"ui":      s.UI.Snapshot(),
			"session": s.Stats(),
		})
	})

	g.DELETE("/ui/toasts/:id", func(c echo.Context) error {
		if !currentSession(c).UI.RemoveToast(c.Param("id")) {
			return echo.NewHTTPError(http.StatusNotFound, "toast not found")
		}
		return c.NoContent(http.StatusNoContent)
	})

	g.POST("/ui/login-modal", func(c echo.Context) error {
		currentSession(c).UI.OpenLoginModal()
		return c.NoContent(http.StatusNoContent)
	})

	g.DELETE("/ui/login-modal", func(c echo.Context) error {
		currentSession(c).UI.CloseLoginModal()
		return c.NoContent(http.StatusNoContent)
	})

	g.POST("/session/close", func(c echo.Context) error {
		hub := c.Get("__hub").(*session.Hub)
		hub.Close(currentUser(c).ID)
		return c.NoContent(http.StatusNoContent)
	})

	g.GET("/stats", func(c echo.Context) error {
		stats, err := controller.Stats.GetPlatformStats(c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, stats)
	})
}
