package repositories

import (
	"context"
	"fmt"
	"time"

	"acta/internal/models"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	CreateItem(ctx context.Context, item *models.InvoiceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetItems(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.Invoice, int, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, page models.PageRequest) ([]*models.Invoice, int, error)
	GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issueDate time.Time) (string, error)
}

type invoiceRepo struct {
	db DBTX
}

func NewInvoiceRepo(db DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, tenant_id, invoice_number, issue_date, due_date, issuer_id, recipient_id, total_amount, total_vat, created_at, updated_at`

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate, &inv.IssuerID, &inv.RecipientID,
		&inv.TotalAmount, &inv.TotalVAT, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	query := `
		INSERT INTO invoice (id, tenant_id, invoice_number, issue_date, due_date, issuer_id, recipient_id, total_amount, total_vat, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, inv.ID, inv.TenantID, inv.InvoiceNumber, inv.IssueDate, inv.DueDate, inv.IssuerID, inv.RecipientID,
		inv.TotalAmount, inv.TotalVAT)
	return mapError(err, "Invoice")
}

func (r *invoiceRepo) CreateItem(ctx context.Context, item *models.InvoiceItem) error {
	query := `
		INSERT INTO invoice_item (id, invoice_id, article_id, quantity, unit_price, total_price, vat_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.InvoiceID, item.ArticleID, item.Quantity, item.UnitPrice, item.TotalPrice, item.VATAmount)
	return mapError(err, "Invoice item")
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoice WHERE id = $1`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "Invoice")
	}
	return inv, nil
}

// GetItems returns the lines of an invoice with the current article fields.
func (r *invoiceRepo) GetItems(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceItem, error) {
	query := `
		SELECT ii.id, ii.invoice_id, ii.article_id, ii.quantity, ii.unit_price, ii.total_price, ii.vat_amount, ii.created_at,
			a.name, a.unit, a.code, a.vat_code::text
		FROM invoice_item ii
		LEFT JOIN article a ON a.id = ii.article_id
		WHERE ii.invoice_id = $1
		ORDER BY ii.created_at ASC, ii.id ASC
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, mapError(err, "Invoice item")
	}
	defer rows.Close()

	var items []*models.InvoiceItem
	for rows.Next() {
		item := &models.InvoiceItem{}
		var vatCode *string
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ArticleID, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.VATAmount, &item.CreatedAt,
			&item.ArticleName, &item.ArticleUnit, &item.ArticleCode, &vatCode); err != nil {
			return nil, mapError(err, "Invoice item")
		}
		if vatCode != nil {
			var code models.VATCode
			if err := code.Scan(*vatCode); err == nil {
				item.VATCode = &code
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "Invoice item")
	}
	return items, nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoice WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "Invoice")
	}
	if tag.RowsAffected() == 0 {
		return mapError(errNoRows, "Invoice")
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context, tenantID *uuid.UUID, page models.PageRequest) ([]*models.Invoice, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoice WHERE ($1::uuid IS NULL OR tenant_id = $1)`, tenantID).Scan(&total); err != nil {
		return nil, 0, mapError(err, "Invoice")
	}

	query := `SELECT ` + invoiceColumns + `
		FROM invoice
		WHERE ($1::uuid IS NULL OR tenant_id = $1)
		ORDER BY issue_date DESC, id ASC
		LIMIT $2 OFFSET $3`
	invoices, err := r.queryInvoices(ctx, query, tenantID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ListByCompany lists invoices the company issued or received.
func (r *invoiceRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, page models.PageRequest) ([]*models.Invoice, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoice WHERE issuer_id = $1 OR recipient_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, mapError(err, "Invoice")
	}

	query := `SELECT ` + invoiceColumns + `
		FROM invoice
		WHERE issuer_id = $1 OR recipient_id = $1
		ORDER BY issue_date DESC, id ASC
		LIMIT $2 OFFSET $3`
	invoices, err := r.queryInvoices(ctx, query, companyID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *invoiceRepo) queryInvoices(ctx context.Context, query string, args ...interface{}) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "Invoice")
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, mapError(err, "Invoice")
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "Invoice")
	}
	return invoices, nil
}

// GenerateInvoiceNumber reserves the next number of the tenant's monthly
// sequence. Run it inside the creating transaction so a rollback releases it.
func (r *invoiceRepo) GenerateInvoiceNumber(ctx context.Context, tenantID uuid.UUID, issueDate time.Time) (string, error) {
	yearMonth := issueDate.UTC().Format("2006-01")

	query := `
		INSERT INTO invoice_sequences (tenant_id, year_month, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, year_month)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1, updated_at = NOW()
		RETURNING last_number
	`
	var sequenceNum int
	if err := r.db.QueryRow(ctx, query, tenantID, yearMonth).Scan(&sequenceNum); err != nil {
		return "", mapError(fmt.Errorf("failed to generate invoice sequence: %w", err), "Invoice sequence")
	}

	return fmt.Sprintf("INV-%s-%06d", issueDate.UTC().Format("200601"), sequenceNum), nil
}
