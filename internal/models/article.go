package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VATCode is a VAT percentage. Only 0, 8 and 18 are accepted.
type VATCode int

const (
	VATZero     VATCode = 0
	VATReduced  VATCode = 8
	VATStandard VATCode = 18
)

func (v VATCode) Valid() bool {
	return v == VATZero || v == VATReduced || v == VATStandard
}

// Rate returns the code as a fraction, 18 -> 0.18.
func (v VATCode) Rate() decimal.Decimal {
	return decimal.NewFromInt(int64(v)).Div(decimal.NewFromInt(100))
}

// Value stores the code as the vat_code enum label.
func (v VATCode) Value() (driver.Value, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid vat code %d", int(v))
	}
	return strconv.Itoa(int(v)), nil
}

func (v *VATCode) Scan(src interface{}) error {
	var s string
	switch t := src.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	case int64:
		*v = VATCode(t)
		return nil
	case int:
		*v = VATCode(t)
		return nil
	case VATCode:
		*v = t
		return nil
	default:
		return fmt.Errorf("cannot scan %T into VATCode", src)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid vat code %q", s)
	}
	*v = VATCode(n)
	return nil
}

type Article struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	CompanyID uuid.UUID       `json:"company_id" db:"company_id"`
	TenantID  uuid.UUID       `json:"tenant_id" db:"-"`
	Name      string          `json:"name" db:"name"`
	Unit      string          `json:"unit" db:"unit"`
	Code      string          `json:"code" db:"code"`
	VATCode   VATCode         `json:"vat_code" db:"vat_code"`
	BasePrice decimal.Decimal `json:"base_price" db:"base_price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
