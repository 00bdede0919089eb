package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"modelhubweb/booking"
	"modelhubweb/models"
	"modelhubweb/services"

	"github.com/labstack/echo/v4"
)

type ConceptIn struct {
	Concept         string   `json:"concept"`
	ReferenceImages []string `json:"reference_images"`
}

type SelectModelIn struct {
	ModelID string `json:"model_id"`
}

type PackageIn struct {
	PackageType models.PackageType `json:"package_type" validate:"required,package_type"`
}

type StepIn struct {
	Step int `json:"step" validate:"required,min=1,max=3"`
}

type ReferenceUploadIn struct {
	FileName string `json:"file_name" validate:"required,max=255"`
}

type ReferenceUploadOut struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
}

type BookingController struct {
	Storage services.StorageProvider
}

func wizardFromPath(c echo.Context) (*booking.Wizard, error) {
	w, ok := currentSession(c).Wizard(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	return w, nil
}

// wizardResult answers with the wizard view; an upstream failure still carries
// the view so the error modal can be rendered.
func wizardResult(c echo.Context, w *booking.Wizard, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, w.View())
	}
	var stepErr *booking.StepError
	if errors.As(err, &stepErr) {
		return c.JSON(http.StatusBadGateway, echo.Map{
			"error": stepErr.Message,
			"view":  w.View(),
		})
	}
	var validationErr *booking.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	}
	return errorResponse(c, err)
}

func (controller *BookingController) BookingRoutes(g *echo.Group) {
	g.POST("", func(c echo.Context) error {
		w := currentSession(c).NewWizard()
		return c.JSON(http.StatusCreated, w.View())
	})

	g.POST("/references", func(c echo.Context) error {
		if controller.Storage == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "file storage is not configured")
		}
		var in ReferenceUploadIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		if err := c.Validate(&in); err != nil {
			return err
		}
		user := currentUser(c)
		key := services.ObjectKey(fmt.Sprintf("references/%s", user.ID), in.FileName)
		uploadURL, err := controller.Storage.PresignUpload(c.Request().Context(), key)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, ReferenceUploadOut{Key: key, UploadURL: uploadURL, FileURL: controller.Storage.PublicURL(key)})
	})

	g.GET("/:id", func(c echo.Context) error {
		w, err := wizardFromPath(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, w.View())
	})

	g.POST("/:id/concept", func(c echo.Context) error {
		w, err := wizardFromPath(c)
		if err != nil {
			return err
		}
		var in ConceptIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		return wizardResult(c, w, w.SubmitConcept(c.Request().Context(), in.Concept, in.ReferenceImages))
	})

	g.POST("/:id/model", func(c echo.Context) error {
		w, err := wizardFromPath(c)
		if err != nil {
			return err
		}
		var in SelectModelIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		return wizardResult(c, w, w.SelectModel(in.ModelID))
	})

	// PUT only picks the tier, POST picks it and pays
	g.PUT("/:id/package", func(c echo.Context) error {
		w, err := wizardFromPath(c)
		if err != nil {
			return err
		}
		var in PackageIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		if err := c.Validate(&in); err != nil {
			return err
		}
		return wizardResult(c, w, w.SelectPackage(in.PackageType))
	})

	g.POST("/:id/package", func(c echo.Context) error {
		w, err := wizardFromPath(c)
		if err != nil {
			return err
		}
		var in PackageIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		if in.PackageType != "" {
			if err := c.Validate(&in); err != nil {
				return err
			}
			if err := w.SelectPackage(in.PackageType); err != nil {
				return wizardResult(c, w, err)
			}
		}
		return wizardResult(c, w, w.SubmitPackage(c.Request().Context()))
	})

	g.POST("/:id/step", func(c echo.Context) error {
		w, err := wizardFromPath(c)
		if err != nil {
			return err
		}
		var in StepIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		if err := c.Validate(&in); err != nil {
			return err
		}
		return wizardResult(c, w, w.GoToStep(booking.Step(in.Step)))
	})

	g.POST("/:id/modal/close", func(c echo.Context) error {
		w, err := wizardFromPath(c)
		if err != nil {
			return err
		}
		w.CloseModal()
		return c.JSON(http.StatusOK, w.View())
	})

	g.DELETE("/:id", func(c echo.Context) error {
		if !currentSession(c).DropWizard(c.Param("id")) {
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		}
		return c.NoContent(http.StatusNoContent)
	})
}
