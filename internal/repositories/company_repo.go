package repositories

import (
	"context"

	"acta/internal/models"

	"github.com/google/uuid"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.Company, int, error)
	UpdateLogo(ctx context.Context, id uuid.UUID, logo *string) error
	ListLogos(ctx context.Context) ([]string, error)
}

type companyRepo struct {
	db DBTX
}

func NewCompanyRepo(db DBTX) CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, tenant_id, business_name, trade_name, business_type::text, unique_identification_number,
		business_number, fiscal_number, vat_number, registration_date, municipality, address,
		phone_number, email, bank_account, logo, created_at, updated_at`

func scanCompany(row rowScanner) (*models.Company, error) {
	c := &models.Company{}
	err := row.Scan(&c.ID, &c.TenantID, &c.BusinessName, &c.TradeName, &c.BusinessType, &c.UniqueIdentificationNumber,
		&c.BusinessNumber, &c.FiscalNumber, &c.VATNumber, &c.RegistrationDate, &c.Municipality, &c.Address,
		&c.PhoneNumber, &c.Email, &c.BankAccount, &c.Logo, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *companyRepo) Create(ctx context.Context, c *models.Company) error {
	query := `
		INSERT INTO company (id, tenant_id, business_name, trade_name, business_type, unique_identification_number,
			business_number, fiscal_number, vat_number, registration_date, municipality, address,
			phone_number, email, bank_account, logo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.TenantID, c.BusinessName, c.TradeName, string(c.BusinessType), c.UniqueIdentificationNumber,
		c.BusinessNumber, c.FiscalNumber, c.VATNumber, c.RegistrationDate, c.Municipality, c.Address,
		c.PhoneNumber, c.Email, c.BankAccount, c.Logo)
	return mapError(err, "Company")
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM company WHERE id = $1`
	c, err := scanCompany(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "Company")
	}
	return c, nil
}

func (r *companyRepo) Update(ctx context.Context, c *models.Company) error {
	query := `
		UPDATE company
		SET business_name = $1, trade_name = $2, business_type = $3, unique_identification_number = $4,
			business_number = $5, fiscal_number = $6, vat_number = $7, registration_date = $8,
			municipality = $9, address = $10, phone_number = $11, email = $12, bank_account = $13,
			updated_at = NOW()
		WHERE id = $14
	`
	tag, err := r.db.Exec(ctx, query, c.BusinessName, c.TradeName, string(c.BusinessType), c.UniqueIdentificationNumber,
		c.BusinessNumber, c.FiscalNumber, c.VATNumber, c.RegistrationDate,
		c.Municipality, c.Address, c.PhoneNumber, c.Email, c.BankAccount, c.ID)
	if err != nil {
		return mapError(err, "Company")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Company")
	}
	return nil
}

func (r *companyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM company WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Company")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Company")
	}
	return nil
}

func (r *companyRepo) List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.Company, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM company WHERE ($1::uuid IS NULL OR tenant_id = $1)`
	if err := r.db.QueryRow(ctx, countQuery, tenantID).Scan(&total); err != nil {
		return nil, 0, mapError(err, "Company")
	}

	query := `SELECT ` + companyColumns + `
		FROM company
		WHERE ($1::uuid IS NULL OR tenant_id = $1)
		ORDER BY business_name ASC, id ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, mapError(err, "Company")
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, mapError(err, "Company")
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, "Company")
	}
	return companies, total, nil
}

func (r *companyRepo) UpdateLogo(ctx context.Context, id uuid.UUID, logo *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE company SET logo = $1, updated_at = NOW() WHERE id = $2`, logo, id)
	if err != nil {
		return mapError(err, "Company")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Company")
	}
	return nil
}

// ListLogos returns every logo object name still referenced by a company.
func (r *companyRepo) ListLogos(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT logo FROM company WHERE logo IS NOT NULL`)
	if err != nil {
		return nil, mapError(err, "Company")
	}
	defer rows.Close()

	var logos []string
	for rows.Next() {
		var logo string
		if err := rows.Scan(&logo); err != nil {
			return nil, mapError(err, "Company")
		}
		logos = append(logos, logo)
	}
	return logos, rows.Err()
}
