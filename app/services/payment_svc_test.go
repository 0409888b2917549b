package services_test

import (
	"context"
	"testing"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapInvoice(subtotal, taxes, total string, qty int) *models.Invoice {
	productID := "prod-1"
	return &models.Invoice{
		InvoiceNumber: "INV-20260314-ABCDEF12",
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		Taxes:         dec(taxes),
		TotalAmount:   dec(total),
		Items: []models.InvoiceItem{
			{ID: "item-1", ProductID: &productID, ProductName: "Cotton Tee", Quantity: qty, Subtotal: dec(subtotal)},
		},
	}
}

func TestBuildSnapRequestWholeAmounts(t *testing.T) {
	t.Parallel()

	req := services.BuildSnapRequest(snapInvoice("27.00", "5.67", "32.67", 3), "https://shop.example.test/payment/finish")
	assert.Equal(t, "INV-20260314-ABCDEF12", req.TransactionDetails.OrderID)
	assert.EqualValues(t, 33, req.TransactionDetails.GrossAmt)

	items := *req.Items
	require.Len(t, items, 2)
	assert.Equal(t, "prod-1", items[0].ID)
	assert.EqualValues(t, 9, items[0].Price)
	assert.EqualValues(t, 3, items[0].Qty)
	assert.Equal(t, "TAX", items[1].ID)
	assert.EqualValues(t, 6, items[1].Price)

	require.NotNil(t, req.Callbacks)
	assert.Equal(t, "https://shop.example.test/payment/finish?invoice=INV-20260314-ABCDEF12", req.Callbacks.Finish)
}

func TestBuildSnapRequestAddsRoundingAdjustment(t *testing.T) {
	t.Parallel()

	req := services.BuildSnapRequest(snapInvoice("10.00", "2.10", "12.10", 3), "")
	assert.EqualValues(t, 12, req.TransactionDetails.GrossAmt)
	assert.Nil(t, req.Callbacks)

	items := *req.Items
	require.Len(t, items, 3)
	last := items[2]
	assert.Equal(t, "ADJUSTMENT", last.ID)
	assert.EqualValues(t, 1, last.Price)

	var sum int64
	for _, item := range items {
		sum += item.Price * int64(item.Qty)
	}
	assert.Equal(t, req.TransactionDetails.GrossAmt, sum)
}

func TestDisabledGateway(t *testing.T) {
	t.Parallel()

	_, err := services.DisabledGateway{}.CreatePaymentLink(context.Background(), &models.Invoice{})
	assert.ErrorIs(t, err, services.ErrPaymentGateway)
	_, err = services.DisabledGateway{}.CheckStatus(context.Background(), "INV-1")
	assert.ErrorIs(t, err, services.ErrPaymentGateway)
}
