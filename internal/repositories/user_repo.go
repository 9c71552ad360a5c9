package repositories

import (
	"context"
	"strings"

	"acta/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.User, int, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, tenant_id, email, password_hash, first_name, last_name, role::text, is_active, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var role string
	if err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// Create relies on users_email_key for uniqueness.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::user_role, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.TenantID, strings.ToLower(user.Email), user.PasswordHash, user.FirstName, user.LastName,
		string(user.Role), user.IsActive)
	return mapError(err, "User")
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "User")
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		return nil, mapError(err, "User")
	}
	return u, nil
}

// Update never changes tenant_id.
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, first_name = $3, last_name = $4, role = $5::user_role, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query, strings.ToLower(user.Email), user.PasswordHash, user.FirstName, user.LastName, string(user.Role), user.IsActive, user.ID)
	if err != nil {
		return mapError(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "User")
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "User")
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE ($1::uuid IS NULL OR tenant_id = $1)`, tenantID).Scan(&total); err != nil {
		return nil, 0, mapError(err, "User")
	}

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE ($1::uuid IS NULL OR tenant_id = $1)
		ORDER BY email ASC, id ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, mapError(err, "User")
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapError(err, "User")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "User")
	}
	return users, total, nil
}
