package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/krakosik/userhub/internal/dto"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{dto.ErrNotFound, http.StatusNotFound},
	{dto.ErrValidation, http.StatusBadRequest},
	{dto.ErrNotAuthorized, http.StatusUnauthorized},
	{dto.ErrForbidden, http.StatusForbidden},
	{dto.ErrConflict, http.StatusConflict},
	{dto.ErrUpstream, http.StatusBadGateway},
	{dto.ErrInternalFailure, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	for _, candidate := range statusBySentinel {
		if errors.Is(err, candidate.err) {
			return candidate.status
		}
	}
	return http.StatusInternalServerError
}

// HTTPErrorHandler renders every error as {statusCode, error, message}.
// Server-side failures are logged and their detail is not sent to the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusFromError(err)
	message := err.Error()

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message = fmt.Sprint(httpErr.Message)
	}

	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"uri":    c.Request().RequestURI,
			"status": status,
		}).Errorf("Request failed: %v", err)
		message = http.StatusText(status)
	}

	body := dto.ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logrus.Errorf("Error writing error response: %v", err)
	}
}
