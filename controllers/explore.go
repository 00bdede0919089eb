package controllers

import (
	"net/http"

	"modelhubweb/explore"
	"modelhubweb/models"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type KeywordIn struct {
	Keyword string `json:"keyword"`
}

type SortIn struct {
	Sort models.SortKey `json:"sort"`
}

type PageIn struct {
	Page int `json:"page"`
}

type ExploreController struct{}

func (controller *ExploreController) ExploreRoutes(g *echo.Group) {
	g.GET("/explore", func(c echo.Context) error {
		ex := currentSession(c).Explorer()
		if !ex.Loaded() {
			ctx := c.Request().Context()
			if err := ex.Load(ctx); err != nil {
				return errorResponse(c, err)
			}
			if err := ex.LoadFavorites(ctx); err != nil {
				log.WithError(err).Warn("failed to load favorites")
			}
		}
		return c.JSON(http.StatusOK, ex.View())
	})

	g.PUT("/explore/filters", func(c echo.Context) error {
		var in explore.Filters
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		ex := currentSession(c).Explorer()
		if err := ex.SetFilters(c.Request().Context(), in); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, ex.View())
	})

	g.PUT("/explore/keyword", func(c echo.Context) error {
		var in KeywordIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		ex := currentSession(c).Explorer()
		if err := ex.SetKeyword(c.Request().Context(), in.Keyword); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, ex.View())
	})

	g.PUT("/explore/sort", func(c echo.Context) error {
		var in SortIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		ex := currentSession(c).Explorer()
		if err := ex.SetSort(c.Request().Context(), in.Sort); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, ex.View())
	})

	g.PUT("/explore/page", func(c echo.Context) error {
		var in PageIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		ex := currentSession(c).Explorer()
		if err := ex.SetPage(c.Request().Context(), in.Page); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, ex.View())
	})

	g.POST("/explore/favorites/:modelId", func(c echo.Context) error {
		ex := currentSession(c).Explorer()
		favorite, err := ex.ToggleFavorite(c.Request().Context(), c.Param("modelId"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"model_id": c.Param("modelId"), "favorite": favorite})
	})

	g.GET("/models/:id", func(c echo.Context) error {
		ex := currentSession(c).Explorer()
		model, err := ex.Detail(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"model":    model,
			"favorite": ex.IsFavorite(model.ID),
		})
	})
}
