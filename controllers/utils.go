package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"modelhubweb/booking"
	"modelhubweb/chat"
	"modelhubweb/dashboard"
	"modelhubweb/explore"
	"modelhubweb/models"
	"modelhubweb/services"
	"modelhubweb/session"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func currentSession(c echo.Context) *session.Session {
	return c.Get("session").(*session.Session)
}

func currentUser(c echo.Context) models.CurrentUser {
	return c.Get("currentUser").(models.CurrentUser)
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"error": message})
}

// statusFor maps a domain error to the HTTP status it is reported with.
func statusFor(err error) int {
	var validationErr *booking.ValidationError
	var invalidQuery *explore.InvalidQueryError
	var apiErr *services.APIError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &invalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrForwardNavigation),
		errors.Is(err, booking.ErrNoModelSelected),
		errors.Is(err, booking.ErrUnknownModel),
		errors.Is(err, booking.ErrNoPackageSelected),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrAttachmentTooLarge),
		errors.Is(err, dashboard.ErrRejectionReasonRequired),
		errors.Is(err, dashboard.ErrNoDeliveryFiles),
		errors.Is(err, dashboard.ErrNoModelImages),
		errors.Is(err, dashboard.ErrTooManyModelImages),
		errors.Is(err, services.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrBusy),
		errors.Is(err, booking.ErrWrongStep),
		errors.Is(err, booking.ErrCompleted),
		errors.Is(err, chat.ErrRoomClosed),
		errors.Is(err, dashboard.ErrOrderBusy):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorResponse(c echo.Context, err error) error {
	status := statusFor(err)
	if services.IsStatus(err, http.StatusUnauthorized) {
		currentSession(c).UI.OpenLoginModal()
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
		sentry.CaptureException(err)
		return errorJSON(c, status, "Something happened")
	}
	return errorJSON(c, status, services.UserMessage(err, err.Error()))
}

func pageParam(c echo.Context) (int, error) {
	page := 1
	if err := echo.QueryParamsBinder(c).Int("page", &page).BindError(); err != nil {
		return 0, echo.ErrBadRequest
	}
	return page, nil
}

func readAttachment(fh *multipart.FileHeader) (*models.Attachment, error) {
	if fh.Size > services.MaxUploadSize {
		return nil, chat.ErrAttachmentTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, services.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	if len(content) > services.MaxUploadSize {
		return nil, chat.ErrAttachmentTooLarge
	}
	return &models.Attachment{Name: fh.Filename, Content: content}, nil
}

// httpErrorHandler renders echo errors with the same {"error": ...} body the handlers use.
func httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		message := fmt.Sprint(he.Message)
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = errorJSON(c, he.Code, message)
		}
		if err != nil {
			log.WithError(err).Warn("failed to write error response")
		}
	}
}
