package calc

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInsufficientCash = errors.New("cash received is less than the invoice total")

type LineInput struct {
	UnitPrice       decimal.Decimal
	Quantity        int
	DiscountPercent decimal.Decimal
}

type LineTotals struct {
	Base           decimal.Decimal
	DiscountAmount decimal.Decimal
	Subtotal       decimal.Decimal
}

type InvoiceOptions struct {
	GlobalDiscountPercent decimal.Decimal
	Cash                  bool
	CashReceived          decimal.Decimal
}

type InvoiceTotals struct {
	Lines          []LineTotals
	Subtotal       decimal.Decimal
	LineDiscount   decimal.Decimal
	GlobalDiscount decimal.Decimal
	TotalDiscount  decimal.Decimal
	Taxes          decimal.Decimal
	TotalAmount    decimal.Decimal
	CashReceived   decimal.Decimal
	ChangeGiven    decimal.Decimal
}

func CalculateLine(line LineInput) LineTotals {
	base := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	discount := CalculateDiscount(base, line.DiscountPercent)
	return LineTotals{
		Base:           base,
		DiscountAmount: discount,
		Subtotal:       base.Sub(discount),
	}
}

// CalculateInvoice computes the line and header amounts of an invoice.
// Line discounts are rounded per line, the global discount applies to the
// already discounted subtotal, and tax is charged on what remains.
func CalculateInvoice(lines []LineInput, opts InvoiceOptions) (InvoiceTotals, error) {
	totals := InvoiceTotals{
		Lines:        make([]LineTotals, 0, len(lines)),
		Subtotal:     decimal.Zero,
		LineDiscount: decimal.Zero,
	}

	for _, line := range lines {
		lt := CalculateLine(line)
		totals.Lines = append(totals.Lines, lt)
		totals.Subtotal = totals.Subtotal.Add(lt.Base)
		totals.LineDiscount = totals.LineDiscount.Add(lt.DiscountAmount)
	}

	totals.GlobalDiscount = decimal.Zero
	if !opts.GlobalDiscountPercent.IsZero() {
		totals.GlobalDiscount = CalculateDiscount(totals.Subtotal.Sub(totals.LineDiscount), opts.GlobalDiscountPercent)
	}
	totals.TotalDiscount = totals.LineDiscount.Add(totals.GlobalDiscount)
	totals.Taxes = CalculateTax(totals.Subtotal.Sub(totals.TotalDiscount))
	totals.TotalAmount = CalculateGrandTotal(totals.Subtotal, totals.Taxes, totals.TotalDiscount)

	totals.CashReceived = decimal.Zero
	totals.ChangeGiven = decimal.Zero
	if opts.Cash {
		if opts.CashReceived.LessThan(totals.TotalAmount) {
			return totals, ErrInsufficientCash
		}
		totals.CashReceived = opts.CashReceived
		totals.ChangeGiven = opts.CashReceived.Sub(totals.TotalAmount)
	}

	return totals, nil
}
