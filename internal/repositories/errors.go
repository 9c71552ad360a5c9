package repositories

import (
	"errors"
	"strings"

	"acta/internal/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

type uniqueField struct {
	column  string
	field   string
	message string
}

// Unique constraints by name, with the column used when the name is unknown.
var uniqueFields = map[string]uniqueField{
	"company_unique_identification_number_key": {"unique_identification_number", "unique_identification_number", "A company with this Unique Identification Number already exists"},
	"company_business_number_key":              {"business_number", "business_number", "A company with this Business Number already exists"},
	"company_fiscal_number_key":                {"fiscal_number", "fiscal_number", "A company with this Fiscal Number already exists"},
	"company_vat_number_key":                   {"vat_number", "vat_number", "A company with this VAT Number already exists"},
	"users_email_key":                          {"email", "email", "A user with this email already exists"},
	"tenants_slug_key":                         {"slug", "slug", "A tenant with this slug already exists"},
	"invoice_tenant_number_key":                {"invoice_number", "invoice_number", "An invoice with this number already exists"},
}

// mapError turns driver errors into domain errors. resource names the
// entity for not-found messages.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError(resource)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return common.NewInternalError("access "+resource, err)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return uniqueConflict(pgErr)
	case pgForeignKeyViolation:
		if pgErr.ConstraintName == "users_tenant_id_fkey" && strings.Contains(pgErr.Message, "delete") {
			return common.NewConflictError("Tenant still has users and cannot be deleted")
		}
		if strings.Contains(pgErr.Message, "update or delete") {
			return common.NewConflictError(resource + " is still referenced")
		}
		return common.NewNotFoundError("referenced " + referencedEntity(pgErr.ConstraintName))
	case pgNumericOutOfRange:
		return &common.AppError{
			Kind:    common.KindValidation,
			Message: resource + " value is out of range",
			Err:     err,
		}
	}
	return common.NewInternalError("access "+resource, err)
}

func uniqueConflict(pgErr *pgconn.PgError) error {
	if f, ok := uniqueFields[pgErr.ConstraintName]; ok {
		return conflictFor(f)
	}
	for _, f := range uniqueFields {
		if strings.Contains(pgErr.Detail, "("+f.column+")") {
			return conflictFor(f)
		}
	}
	return common.NewConflictError("Resource already exists")
}

func conflictFor(f uniqueField) error {
	return &common.AppError{
		Kind:    common.KindConflict,
		Message: f.message,
		Details: map[string]string{f.field: "already exists"},
	}
}

func referencedEntity(constraint string) string {
	switch {
	case strings.Contains(constraint, "tenant"):
		return "tenant"
	case strings.Contains(constraint, "company") || strings.Contains(constraint, "issuer") || strings.Contains(constraint, "recipient"):
		return "company"
	case strings.Contains(constraint, "article"):
		return "article"
	case strings.Contains(constraint, "invoice"):
		return "invoice"
	}
	return "record"
}
