package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"acta/internal/common"
	"acta/internal/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler renders every error, including the ones raised by echo
// itself (unknown routes, bad methods, timeouts), in the common error
// envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var writeErr error
	var appErr *common.AppError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		if appErr.Kind == common.KindInternal {
			logger.FromEcho(c).Error("request failed", zap.Error(err))
		}
		writeErr = common.SendError(c, appErr)
	case errors.As(err, &he):
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		} else if he.Message != nil {
			message = fmt.Sprint(he.Message)
		}
		if he.Code >= http.StatusInternalServerError {
			logger.FromEcho(c).Error("request failed", zap.Error(err))
		}
		writeErr = c.JSON(he.Code, common.CreateErrorResponse(string(kindForStatus(he.Code)), message, nil))
	default:
		logger.FromEcho(c).Error("request failed", zap.Error(err))
		writeErr = common.SendError(c, err)
	}

	if writeErr != nil {
		logger.FromEcho(c).Warn("failed to write error response", zap.Error(writeErr))
	}
}

func kindForStatus(status int) common.ErrorKind {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return common.KindNotFound
	case http.StatusUnauthorized:
		return common.KindUnauthorized
	case http.StatusForbidden:
		return common.KindForbidden
	case http.StatusConflict:
		return common.KindConflict
	}
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return common.KindValidation
	}
	return common.KindInternal
}
