package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var money = accounting.Accounting{Symbol: "$", Precision: 2, Thousand: ",", Decimal: "."}

// Money renders an amount the way it appears on receipts, e.g. $1,234.50.
func Money(amount decimal.Decimal) string {
	return money.FormatMoney(amount.Round(2).InexactFloat64())
}

func Percent(p decimal.Decimal) string {
	return p.Round(2).String() + "%"
}
