package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is one recorded state-changing request.
type AuditLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   *uuid.UUID `json:"tenant_id" db:"tenant_id"`
	UserID     *uuid.UUID `json:"user_id" db:"user_id"`
	Role       string     `json:"role" db:"role"`
	Action     string     `json:"action" db:"action"`
	ResourceID *string    `json:"resource_id" db:"resource_id"`
	Status     int        `json:"status" db:"status"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	RequestID  string     `json:"request_id" db:"request_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// AuditLogFilter narrows an audit log listing. Nil fields do not filter.
type AuditLogFilter struct {
	TenantID *uuid.UUID
	UserID   *uuid.UUID
	From     *time.Time
	To       *time.Time
}
