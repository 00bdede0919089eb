package controllers

import (
	"net/http"
	"strings"

	"modelhubweb/models"

	"github.com/labstack/echo/v4"
)

type RejectIn struct {
	Reason string `json:"reason"`
}

type DashboardController struct{}

func (controller *DashboardController) BrandRoutes(g *echo.Group) {
	g.GET("/orders", func(c echo.Context) error {
		page, err := pageParam(c)
		if err != nil {
			return err
		}
		orders, err := currentSession(c).Brand().Orders(c.Request().Context(), page)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, orders)
	})

	g.GET("/orders/:id", func(c echo.Context) error {
		order, err := currentSession(c).Brand().OrderDetail(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, order)
	})

	g.GET("/orders/:id/files", func(c echo.Context) error {
		files, err := currentSession(c).Brand().DeliveryFiles(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, files)
	})

	g.GET("/favorites", func(c echo.Context) error {
		favorites, err := currentSession(c).Brand().Favorites(c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, favorites)
	})

	g.DELETE("/favorites/:modelId", func(c echo.Context) error {
		if err := currentSession(c).Brand().RemoveFavorite(c.Request().Context(), c.Param("modelId")); err != nil {
			return errorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func (controller *DashboardController) CreatorRoutes(g *echo.Group) {
	g.GET("/orders", func(c echo.Context) error {
		page, err := pageParam(c)
		if err != nil {
			return err
		}
		orders, err := currentSession(c).Creator().Orders(c.Request().Context(), page)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, orders)
	})

	g.POST("/orders/:id/accept", func(c echo.Context) error {
		order, err := currentSession(c).Creator().Accept(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, order)
	})

	g.POST("/orders/:id/reject", func(c echo.Context) error {
		var in RejectIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		order, err := currentSession(c).Creator().Reject(c.Request().Context(), c.Param("id"), in.Reason)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, order)
	})

	g.POST("/orders/:id/complete", func(c echo.Context) error {
		form, err := c.MultipartForm()
		if err != nil {
			return echo.ErrBadRequest
		}
		files := make([]models.Attachment, 0, len(form.File["files"]))
		for _, fh := range form.File["files"] {
			attachment, err := readAttachment(fh)
			if err != nil {
				return errorResponse(c, err)
			}
			files = append(files, *attachment)
		}
		order, err := currentSession(c).Creator().Complete(c.Request().Context(), c.Param("id"), files, c.FormValue("notes"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, order)
	})

	g.GET("/settlements", func(c echo.Context) error {
		settlements, err := currentSession(c).Creator().Settlements(c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, settlements)
	})

	g.POST("/models", func(c echo.Context) error {
		var in models.ModelCreateIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Status == "" {
			in.Status = "draft"
		}
		if err := c.Validate(&in); err != nil {
			return err
		}
		form, err := c.MultipartForm()
		if err != nil {
			return echo.ErrBadRequest
		}
		images := make([]models.Attachment, 0, len(form.File["images"]))
		for _, fh := range form.File["images"] {
			attachment, err := readAttachment(fh)
			if err != nil {
				return errorResponse(c, err)
			}
			images = append(images, *attachment)
		}
		model, err := currentSession(c).Creator().RegisterModel(c.Request().Context(), in, images)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, model)
	})

	g.GET("/models", func(c echo.Context) error {
		page, err := pageParam(c)
		if err != nil {
			return err
		}
		modelsPage, err := currentSession(c).Creator().MyModels(c.Request().Context(), page)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, modelsPage)
	})
}
