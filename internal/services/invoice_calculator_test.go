package services

import (
	"testing"

	"acta/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	override := dec("12.345")

	tests := []struct {
		name      string
		quantity  decimal.Decimal
		unitPrice *decimal.Decimal
		article   *models.Article
		wantUnit  string
		wantTotal string
		wantVAT   string
	}{
		{
			name:      "standard rate",
			quantity:  dec("2"),
			article:   &models.Article{BasePrice: dec("100.00"), VATCode: models.VATStandard},
			wantUnit:  "100.00",
			wantTotal: "200.00",
			wantVAT:   "36.00",
		},
		{
			name:      "reduced rate rounds half up",
			quantity:  dec("3"),
			article:   &models.Article{BasePrice: dec("0.35"), VATCode: models.VATReduced},
			wantUnit:  "0.35",
			wantTotal: "1.05",
			wantVAT:   "0.08",
		},
		{
			name:      "zero rate",
			quantity:  dec("1.5"),
			article:   &models.Article{BasePrice: dec("9.99"), VATCode: models.VATZero},
			wantUnit:  "9.99",
			wantTotal: "14.99",
			wantVAT:   "0.00",
		},
		{
			name:      "unit price override",
			quantity:  dec("1"),
			unitPrice: &override,
			article:   &models.Article{BasePrice: dec("1.00"), VATCode: models.VATStandard},
			wantUnit:  "12.35",
			wantTotal: "12.35",
			wantVAT:   "2.22",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := ComputeLine(tt.quantity, tt.unitPrice, tt.article)
			assert.Equal(t, tt.wantUnit, line.UnitPrice.StringFixed(2))
			assert.Equal(t, tt.wantTotal, line.TotalPrice.StringFixed(2))
			assert.Equal(t, tt.wantVAT, line.VATAmount.StringFixed(2))
		})
	}
}

func TestSumLines(t *testing.T) {
	lines := []LineAmounts{
		{TotalPrice: dec("200.00"), VATAmount: dec("36.00")},
		{TotalPrice: dec("1.05"), VATAmount: dec("0.08")},
	}

	total, vat := SumLines(lines)

	assert.Equal(t, "201.05", total.StringFixed(2))
	assert.Equal(t, "36.08", vat.StringFixed(2))
}

func TestSumLines_Empty(t *testing.T) {
	total, vat := SumLines(nil)

	assert.True(t, total.IsZero())
	assert.True(t, vat.IsZero())
}
