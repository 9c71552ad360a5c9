package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"proxy-authorization": {},
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

const auditWriteTimeout = 2 * time.Second

// Audit writes an audit line for every state-changing request and for any
// request to the auth routes, after the handler ran. When recorder is set the
// entry is also stored; a failed write is logged and never fails the request.
func Audit(recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if !shouldAudit(c.Request().Method, c.Path()) {
				return err
			}

			status := c.Response().Status
			if err != nil {
				status = common.HTTPStatus(common.KindOf(err))
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			entry := &models.AuditLog{
				Action:    c.Request().Method + " " + c.Path(),
				Status:    status,
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
				RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if id := c.Param("id"); id != "" {
				entry.ResourceID = &id
			}

			fields := []zap.Field{
				zap.String("action", entry.Action),
				zap.String("ip", c.RealIP()),
				zap.String("user_agent", c.Request().UserAgent()),
				zap.Int("status", status),
				zap.Any("headers", sanitizeHeaders(c.Request().Header)),
			}
			for _, name := range c.ParamNames() {
				fields = append(fields, zap.String("param_"+name, c.Param(name)))
			}
			if p, ok := common.GetPrincipalFromContext(c.Request().Context()); ok {
				fields = append(fields, zap.String("user_id", p.ID.String()), zap.String("role", string(p.Role)))
				userID := p.ID
				entry.UserID = &userID
				entry.Role = string(p.Role)
				if p.HasTenant() {
					fields = append(fields, zap.String("tenant_id", p.TenantID.String()))
					entry.TenantID = p.TenantID
				}
			}
			if err != nil {
				fields = append(fields, zap.String("error", err.Error()))
			}

			log := logger.FromEcho(c).Named("audit")
			log.Info("audit", fields...)

			if recorder != nil {
				ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), auditWriteTimeout)
				defer cancel()
				if recErr := recorder.Record(ctx, entry); recErr != nil {
					log.Warn("failed to store audit entry", zap.String("action", entry.Action), zap.Error(recErr))
				}
			}
			return err
		}
	}
}

func shouldAudit(method, path string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return strings.Contains(path, "/auth/")
}

func sanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))
	for key, values := range headers {
		if _, ok := sensitiveHeaders[strings.ToLower(key)]; ok {
			sanitized[key] = "[REDACTED]"
			continue
		}
		sanitized[key] = strings.Join(values, ", ")
	}
	return sanitized
}
