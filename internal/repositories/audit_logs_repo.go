package repositories

import (
	"context"
	"time"

	"acta/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditLogFilter, page models.PageRequest) ([]*models.AuditLog, int, error)
	// DeleteBefore purges entries older than cutoff and returns how many went.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepo(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

const auditLogColumns = `id, tenant_id, user_id, role, action, resource_id, status, ip_address, user_agent, request_id, created_at`

const auditLogFilter = `
		WHERE ($1::uuid IS NULL OR tenant_id = $1)
		  AND ($2::uuid IS NULL OR user_id = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)`

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	a := &models.AuditLog{}
	err := row.Scan(&a.ID, &a.TenantID, &a.UserID, &a.Role, &a.Action, &a.ResourceID, &a.Status,
		&a.IPAddress, &a.UserAgent, &a.RequestID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (` + auditLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.TenantID, entry.UserID, entry.Role, entry.Action, entry.ResourceID,
		entry.Status, entry.IPAddress, entry.UserAgent, entry.RequestID, entry.CreatedAt)
	return mapError(err, "Audit log")
}

func (r *auditLogsRepo) List(ctx context.Context, filter models.AuditLogFilter, page models.PageRequest) ([]*models.AuditLog, int, error) {
	args := []interface{}{filter.TenantID, filter.UserID, filter.From, filter.To}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+auditLogFilter, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, "Audit log")
	}

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs` + auditLogFilter + `
		ORDER BY created_at DESC, id ASC
		LIMIT $5 OFFSET $6`
	rows, err := r.db.Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, mapError(err, "Audit log")
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, mapError(err, "Audit log")
		}
		entries = append(entries, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "Audit log")
	}
	return entries, total, nil
}

func (r *auditLogsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, mapError(err, "Audit log")
	}
	return tag.RowsAffected(), nil
}
