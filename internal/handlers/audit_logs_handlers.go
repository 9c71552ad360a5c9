package handlers

import (
	"net/http"
	"time"

	"acta/internal/common"
	"acta/internal/models"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
)

type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditLogsService: auditLogsService}
}

// ListAuditLogs pages through the stored audit trail, newest first. Filters:
// tenant_id, user_id, and an RFC 3339 from/to window.
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	filter := models.AuditLogFilter{TenantID: scopedTenant(c)}
	if filter.UserID, err = common.ParseOptionalUUID(c.QueryParam("user_id"), "user_id"); err != nil {
		return common.SendError(c, err)
	}
	if filter.From, err = timeQuery(c, "from"); err != nil {
		return common.SendError(c, err)
	}
	if filter.To, err = timeQuery(c, "to"); err != nil {
		return common.SendError(c, err)
	}
	page, err := common.ParsePageRequest(c)
	if err != nil {
		return common.SendError(c, err)
	}

	entries, err := h.auditLogsService.List(c.Request().Context(), p, filter, page)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func timeQuery(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, common.NewValidationError(name, name+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}
