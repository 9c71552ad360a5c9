package services

import (
	"context"
	"time"

	"acta/internal/common"
	"acta/internal/models"
	"acta/internal/repositories"
)

type AuditLogsService interface {
	Record(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, p models.Principal, filter models.AuditLogFilter, page models.PageRequest) (*models.Page[*models.AuditLog], error)
	// Purge drops entries older than retention.
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
	now           func() time.Time
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogsRepo: auditLogsRepo, now: time.Now}
}

func (s *auditLogsService) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.Action == "" {
		return common.NewValidationError("action", "action is required")
	}
	return s.auditLogsRepo.Create(ctx, entry)
}

func (s *auditLogsService) List(ctx context.Context, p models.Principal, filter models.AuditLogFilter, page models.PageRequest) (*models.Page[*models.AuditLog], error) {
	if d := Authorize(p, Require("audit.list", models.RoleAdmin), filter.TenantID); !d.Allowed {
		return nil, d.Err()
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, common.NewValidationError("from", "from must not be after to")
	}

	filter.TenantID = TenantFilter(p, filter.TenantID)
	entries, total, err := s.auditLogsRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(entries, total, page), nil
}

func (s *auditLogsService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.auditLogsRepo.DeleteBefore(ctx, s.now().Add(-retention))
}
