package controllers

import (
	"net/http"

	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/session"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("package_type", models.ValidatePackageType)
	v.RegisterValidation("order_status", models.ValidateOrderStatus)
	v.RegisterValidation("role", models.ValidateRole)
	return &CustomValidator{validator: v}
}

func SetupServer(
	jwtSecret string,
	hub *session.Hub,
	storage services.StorageProvider,
	stats services.StatsServiceProvider,
) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = httpErrorHandler(e)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__hub", hub)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "ok",
			"sessions": hub.Len(),
		})
	})

	authGroup := e.Group("", echojwt.JWT([]byte(jwtSecret)), UserMiddleware)

	uiController := UIController{Stats: stats}
	uiController.UIRoutes(authGroup)

	bookingController := BookingController{Storage: storage}
	bookingGroup := authGroup.Group("/booking", RoleMiddleware(models.RoleBrand))
	bookingController.BookingRoutes(bookingGroup)

	chatController := ChatController{}
	chatGroup := authGroup.Group("/chat")
	chatController.ChatRoutes(chatGroup)

	exploreController := ExploreController{}
	exploreController.ExploreRoutes(authGroup)

	dashboardController := DashboardController{}
	brandGroup := authGroup.Group("/dashboard/brand", RoleMiddleware(models.RoleBrand))
	dashboardController.BrandRoutes(brandGroup)
	creatorGroup := authGroup.Group("/dashboard/creator", RoleMiddleware(models.RoleCreator))
	dashboardController.CreatorRoutes(creatorGroup)

	return e
}
