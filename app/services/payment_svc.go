package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

// PaymentGateway creates hosted payment pages for online invoices.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, invoice *models.Invoice) (string, error)
	CheckStatus(ctx context.Context, invoiceNumber string) (*PaymentStatus, error)
}

type PaymentStatus struct {
	InvoiceNumber     string `json:"invoice_number"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
}

type SnapGateway struct {
	snapClient *snap.Client
	coreClient coreapi.Client
	finishURL  string
}

func NewSnapGateway(snapClient *snap.Client, serverKey string, env midtrans.EnvironmentType, finishURL string) *SnapGateway {
	var core coreapi.Client
	core.New(serverKey, env)
	return &SnapGateway{snapClient: snapClient, coreClient: core, finishURL: finishURL}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// BuildSnapRequest maps an invoice to a Snap request. Midtrans wants whole
// amounts whose item sum equals the gross amount, so a rounding adjustment
// line is appended when needed.
func BuildSnapRequest(invoice *models.Invoice, finishURL string) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(invoice.Items)+2)
	for _, item := range invoice.Items {
		id := item.ID
		if item.ProductID != nil {
			id = *item.ProductID
		}
		qty := item.Quantity
		if qty <= 0 {
			continue
		}
		unit := item.Subtotal.Div(decimal.NewFromInt(int64(qty))).Round(0)
		items = append(items, midtrans.ItemDetails{
			ID:    id,
			Name:  truncate(item.ProductName, 50),
			Price: unit.IntPart(),
			Qty:   int32(qty),
		})
	}

	if !invoice.Taxes.IsZero() {
		items = append(items, midtrans.ItemDetails{
			ID:    "TAX",
			Name:  "Taxes",
			Price: invoice.Taxes.Round(0).IntPart(),
			Qty:   1,
		})
	}

	gross := invoice.TotalAmount.Round(0).IntPart()
	var sum int64
	for _, item := range items {
		sum += item.Price * int64(item.Qty)
	}
	if diff := gross - sum; diff != 0 {
		items = append(items, midtrans.ItemDetails{
			ID:    "ADJUSTMENT",
			Name:  "Rounding adjustment",
			Price: diff,
			Qty:   1,
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  invoice.InvoiceNumber,
			GrossAmt: gross,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: truncate(invoice.CustomerName, 50),
			Email: invoice.CustomerEmail,
			Phone: invoice.CustomerPhone,
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if finishURL != "" {
		req.Callbacks = &snap.Callbacks{Finish: finishURL + "?invoice=" + invoice.InvoiceNumber}
	}
	return req
}

func (g *SnapGateway) CreatePaymentLink(ctx context.Context, invoice *models.Invoice) (string, error) {
	resp, mErr := g.snapClient.CreateTransaction(BuildSnapRequest(invoice, g.finishURL))
	if mErr != nil {
		return "", fmt.Errorf("%w: %s", ErrPaymentGateway, mErr.Error())
	}
	if resp == nil || resp.RedirectURL == "" {
		return "", fmt.Errorf("%w: empty redirect url", ErrPaymentGateway)
	}
	return resp.RedirectURL, nil
}

func (g *SnapGateway) CheckStatus(ctx context.Context, invoiceNumber string) (*PaymentStatus, error) {
	resp, mErr := g.coreClient.CheckTransaction(invoiceNumber)
	if mErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentGateway, mErr.Error())
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty status response", ErrPaymentGateway)
	}
	if resp.StatusCode == "404" {
		return nil, ErrNotFound
	}
	return &PaymentStatus{
		InvoiceNumber:     invoiceNumber,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		GrossAmount:       resp.GrossAmount,
	}, nil
}

var errGatewayDisabled = errors.New("online payments are not configured")

// DisabledGateway is used when no Midtrans server key is configured.
type DisabledGateway struct{}

func (DisabledGateway) CreatePaymentLink(ctx context.Context, invoice *models.Invoice) (string, error) {
	return "", fmt.Errorf("%w: %v", ErrPaymentGateway, errGatewayDisabled)
}

func (DisabledGateway) CheckStatus(ctx context.Context, invoiceNumber string) (*PaymentStatus, error) {
	return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, errGatewayDisabled)
}
