package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moveos/scheduling-service/internal/dto"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as a JSON envelope and logs server-side
// failures. Client errors are noise at warn level and below.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := err.Error()

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		_ = c.JSON(code, dto.ErrorResponse{Message: msg})
	}
}
