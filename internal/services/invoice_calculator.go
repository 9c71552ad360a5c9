package services

import (
	"acta/internal/models"

	"github.com/shopspring/decimal"
)

// Line amounts carry two fractional digits, rounded half-up.
const moneyPlaces = 2

// maxStoredAmount is the largest value a NUMERIC(12,2) column holds.
var maxStoredAmount = decimal.RequireFromString("9999999999.99")

// maxColumnAmount is the largest value a NUMERIC(10,2) column holds.
var maxColumnAmount = decimal.RequireFromString("99999999.99")

func exceedsColumn(v decimal.Decimal) bool {
	return v.Round(moneyPlaces).GreaterThan(maxColumnAmount)
}

// LineAmounts are the derived amounts of one invoice item.
type LineAmounts struct {
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	VATAmount  decimal.Decimal
}

// ComputeLine prices one item. unitPrice overrides the article base price
// when set.
func ComputeLine(quantity decimal.Decimal, unitPrice *decimal.Decimal, article *models.Article) LineAmounts {
	price := article.BasePrice
	if unitPrice != nil {
		price = *unitPrice
	}
	price = price.Round(moneyPlaces)

	total := quantity.Mul(price).Round(moneyPlaces)
	vat := total.Mul(article.VATCode.Rate()).Round(moneyPlaces)
	return LineAmounts{UnitPrice: price, TotalPrice: total, VATAmount: vat}
}

// SumLines returns the invoice totals as the sum of the rounded line amounts.
func SumLines(lines []LineAmounts) (totalAmount, totalVAT decimal.Decimal) {
	totalAmount, totalVAT = decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalAmount = totalAmount.Add(l.TotalPrice)
		totalVAT = totalVAT.Add(l.VATAmount)
	}
	return totalAmount, totalVAT
}
