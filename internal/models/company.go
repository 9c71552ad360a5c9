package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BusinessType string

const (
	BusinessTypeSoleProprietorship BusinessType = "Sole Proprietorship"
	BusinessTypePartnership        BusinessType = "Partnership"
	BusinessTypeLLC                BusinessType = "Limited Liability Company"
	BusinessTypeCorporation        BusinessType = "Corporation"
)

func (b BusinessType) Valid() bool {
	switch b {
	case BusinessTypeSoleProprietorship, BusinessTypePartnership, BusinessTypeLLC, BusinessTypeCorporation:
		return true
	}
	return false
}

type Company struct {
	ID                         uuid.UUID    `json:"id" db:"id"`
	TenantID                   uuid.UUID    `json:"tenant_id" db:"tenant_id"`
	BusinessName               string       `json:"business_name" db:"business_name"`
	TradeName                  *string      `json:"trade_name" db:"trade_name"`
	BusinessType               BusinessType `json:"business_type" db:"business_type"`
	UniqueIdentificationNumber string       `json:"unique_identification_number" db:"unique_identification_number"`
	BusinessNumber             *string      `json:"business_number" db:"business_number"`
	FiscalNumber               *string      `json:"fiscal_number" db:"fiscal_number"`
	VATNumber                  *string      `json:"vat_number" db:"vat_number"`
	RegistrationDate           time.Time    `json:"registration_date" db:"registration_date"`
	Municipality               string       `json:"municipality" db:"municipality"`
	Address                    string       `json:"address" db:"address"`
	PhoneNumber                string       `json:"phone_number" db:"phone_number"`
	Email                      string       `json:"email" db:"email"`
	BankAccount                *string      `json:"bank_account" db:"bank_account"`
	Logo                       *string      `json:"logo" db:"logo"`
	CreatedAt                  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time    `json:"updated_at" db:"updated_at"`
}

// DisplayLines is the formatted party block printed on documents.
func (c *Company) DisplayLines() []string {
	lines := []string{c.BusinessName}
	if c.TradeName != nil && *c.TradeName != "" {
		lines = append(lines, *c.TradeName)
	}
	lines = append(lines, c.Address, c.Municipality)
	lines = append(lines, "UIN: "+c.UniqueIdentificationNumber)
	if c.FiscalNumber != nil && *c.FiscalNumber != "" {
		lines = append(lines, "Fiscal No: "+*c.FiscalNumber)
	}
	if c.VATNumber != nil && *c.VATNumber != "" {
		lines = append(lines, "VAT No: "+*c.VATNumber)
	}
	contact := strings.TrimSpace(strings.Join([]string{c.PhoneNumber, c.Email}, "  "))
	if contact != "" {
		lines = append(lines, contact)
	}
	if c.BankAccount != nil && *c.BankAccount != "" {
		lines = append(lines, "Bank account: "+*c.BankAccount)
	}
	return lines
}
