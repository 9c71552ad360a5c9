package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDueDays is the fixed payment term.
const InvoiceDueDays = 30

type Invoice struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TenantID      uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	InvoiceNumber string          `json:"invoice_number" db:"invoice_number"`
	IssueDate     time.Time       `json:"issue_date" db:"issue_date"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	IssuerID      uuid.UUID       `json:"issuer_id" db:"issuer_id"`
	RecipientID   uuid.UUID       `json:"recipient_id" db:"recipient_id"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	TotalVAT      decimal.Decimal `json:"total_vat" db:"total_vat"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Issuer    *Company       `json:"issuer,omitempty" db:"-"`
	Recipient *Company       `json:"recipient,omitempty" db:"-"`
	Items     []*InvoiceItem `json:"items,omitempty" db:"-"`
}

// DueDateFor returns the due date for an issue date.
func DueDateFor(issueDate time.Time) time.Time {
	return issueDate.AddDate(0, 0, InvoiceDueDays)
}

type InvoiceItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	InvoiceID  uuid.UUID       `json:"invoice_id" db:"invoice_id"`
	ArticleID  *uuid.UUID      `json:"article_id" db:"article_id"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	VATAmount  decimal.Decimal `json:"vat_amount" db:"vat_amount"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`

	// Article snapshot, filled on reads; nil once the article is deleted.
	ArticleName *string  `json:"article_name,omitempty" db:"-"`
	ArticleUnit *string  `json:"article_unit,omitempty" db:"-"`
	ArticleCode *string  `json:"article_code,omitempty" db:"-"`
	VATCode     *VATCode `json:"vat_code,omitempty" db:"-"`
}
