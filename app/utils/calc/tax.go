package calc

import "github.com/shopspring/decimal"

const TaxPercent = 21

func GetTaxPercent() decimal.Decimal {
	return decimal.NewFromInt(TaxPercent)
}

func CalculateTax(taxableBase decimal.Decimal) decimal.Decimal {
	return taxableBase.Mul(GetTaxPercent()).Div(hundred).Round(2)
}

func CalculateGrandTotal(subtotal, taxAmount, discountAmount decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discountAmount).Add(taxAmount).Round(2)
}
