// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error returned by a route as {"detail": ...}.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError is installed as echo's HTTPErrorHandler.
func (h *ErrorHandler) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	stdErr, status := h.normalizeError(err)
	h.logError(c, stdErr, status)

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, stdErr.ToResponse())
	}
	if writeErr != nil {
		h.logger.Error("failed to write error response", map[string]interface{}{
			"error": writeErr,
			"path":  c.Request().URL.Path,
		})
	}
}

// normalizeError ensures we always have a StandardError and a status.
func (h *ErrorHandler) normalizeError(err error) (*StandardError, int) {
	var httpErr *echo.HTTPError
	if stderrors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		return &StandardError{
			Code:      codeForStatus(httpErr.Code),
			Message:   message,
			Retryable: false,
			Timestamp: time.Now().UTC(),
			cause:     httpErr.Internal,
		}, httpErr.Code
	}

	stdErr := AsStandardError(err)
	return stdErr, stdErr.HTTPStatus()
}

func (h *ErrorHandler) logError(c echo.Context, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"method":        c.Request().Method,
		"path":          c.Request().URL.Path,
		"status":        status,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if status >= http.StatusInternalServerError {
		if stdErr.cause != nil {
			fields["cause"] = stdErr.cause.Error()
		}
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Info("request rejected", fields)
}
