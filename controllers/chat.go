package controllers

import (
	"errors"
	"net/http"

	"modelhubweb/chat"
	"modelhubweb/models"

	"github.com/labstack/echo/v4"
)

type MessageIn struct {
	Message string `json:"message" form:"message"`
}

type ChatController struct{}

func roomFromPath(c echo.Context) (*chat.Room, error) {
	r, ok := currentSession(c).ExistingRoom(c.Param("orderId"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "chat is not open")
	}
	return r, nil
}

func (controller *ChatController) ChatRoutes(g *echo.Group) {
	g.POST("/:orderId/open", func(c echo.Context) error {
		s := currentSession(c)
		orderID := c.Param("orderId")
		room := s.Room(orderID)
		if err := room.Open(c.Request().Context()); err != nil {
			s.DiscardRoom(orderID, room)
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, room.View())
	})

	g.GET("/:orderId", func(c echo.Context) error {
		room, err := roomFromPath(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, room.View())
	})

	g.GET("/:orderId/unread", func(c echo.Context) error {
		room, err := roomFromPath(c)
		if err != nil {
			return err
		}
		count, err := room.UnreadCount(c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, models.ChatStats{UnreadCount: count})
	})

	g.GET("/:orderId/files", func(c echo.Context) error {
		room, err := roomFromPath(c)
		if err != nil {
			return err
		}
		files, err := room.DeliveryFiles(c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, files)
	})

	g.POST("/:orderId/messages", func(c echo.Context) error {
		room, err := roomFromPath(c)
		if err != nil {
			return err
		}
		var in MessageIn
		if err := c.Bind(&in); err != nil {
			return echo.ErrBadRequest
		}
		var attachment *models.Attachment
		if fh, err := c.FormFile("attachment"); err == nil {
			attachment, err = readAttachment(fh)
			if err != nil {
				return errorResponse(c, err)
			}
		}
		sent, err := room.Send(c.Request().Context(), in.Message, attachment)
		if err != nil {
			var sendErr *chat.SendError
			if errors.As(err, &sendErr) {
				return c.JSON(http.StatusBadGateway, echo.Map{
					"error": sendErr.Message,
					"view":  room.View(),
				})
			}
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message": sent,
			"view":    room.View(),
		})
	})

	g.DELETE("/:orderId", func(c echo.Context) error {
		if !currentSession(c).CloseRoom(c.Param("orderId")) {
			return echo.NewHTTPError(http.StatusNotFound, "chat is not open")
		}
		return c.NoContent(http.StatusNoContent)
	})
}
