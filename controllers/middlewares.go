package controllers

import (
	"fmt"
	"net/http"

	"modelhubweb/models"
	"modelhubweb/session"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// UserMiddleware turns the verified token into the current user and attaches
// that user's session.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		hub := c.Get("__hub").(*session.Hub)
		userRaw := c.Get("user")
		if userRaw == nil {
			return echo.ErrUnauthorized
		}
		token := userRaw.(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		userId := claimString(claims, "sub")
		if userId == "" {
			log.Warn("Error while getting the token information!")
			return echo.ErrUnauthorized
		}
		role := claimString(claims, "role")
		if !models.ValidateRoleRaw(role) {
			return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("unknown role %q", role))
		}

		currentUser := models.CurrentUser{
			ID:    userId,
			Name:  claimString(claims, "name"),
			Email: claimString(claims, "email"),
			Role:  models.UserRole(role),
			Token: token.Raw,
		}
		c.Set("currentUser", currentUser)
		c.Set("session", hub.Get(currentUser))
		return next(c)
	}
}

func RoleMiddleware(role models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.Get("currentUser").(models.CurrentUser)
			if user.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("%s access only", role))
			}
			return next(c)
		}
	}
}
