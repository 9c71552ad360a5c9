package repositories

import (
	"context"

	"acta/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetFirst(ctx context.Context) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.Tenant, int, error)
	CountUsers(ctx context.Context, id uuid.UUID) (int, error)
}

type tenantRepo struct {
	db DBTX
}

func NewTenantRepo(db DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, slug, description, is_active, created_at, updated_at`

func scanTenant(row rowScanner) (*models.Tenant, error) {
	t := &models.Tenant{}
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.Slug, tenant.Description, tenant.IsActive)
	return mapError(err, "Tenant")
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "Tenant")
	}
	return t, nil
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	t, err := scanTenant(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, mapError(err, "Tenant")
	}
	return t, nil
}

// GetFirst returns the first tenant by name.
func (r *tenantRepo) GetFirst(ctx context.Context) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY name ASC, id ASC LIMIT 1`
	t, err := scanTenant(r.db.QueryRow(ctx, query))
	if err != nil {
		return nil, mapError(err, "Tenant")
	}
	return t, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, slug = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, tenant.Name, tenant.Slug, tenant.Description, tenant.IsActive, tenant.ID)
	if err != nil {
		return mapError(err, "Tenant")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Tenant")
	}
	return nil
}

// Delete fails with a conflict while users reference the tenant.
func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Tenant")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Tenant")
	}
	return nil
}

func (r *tenantRepo) List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.Tenant, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants WHERE ($1::uuid IS NULL OR id = $1)`, tenantID).Scan(&total); err != nil {
		return nil, 0, mapError(err, "Tenant")
	}

	query := `SELECT ` + tenantColumns + `
		FROM tenants
		WHERE ($1::uuid IS NULL OR id = $1)
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, mapError(err, "Tenant")
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, mapError(err, "Tenant")
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "Tenant")
	}
	return tenants, total, nil
}

func (r *tenantRepo) CountUsers(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, id).Scan(&count); err != nil {
		return 0, mapError(err, "Tenant")
	}
	return count, nil
}
