package services_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	db      *gorm.DB
	svc     *services.InvoiceService
	sender  *fakeSender
	gateway *fakeGateway
	metrics *metrics.Metrics
	clock   *testClock
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	db := newTestDB(t)
	f := &invoiceFixture{
		db:      db,
		sender:  &fakeSender{},
		gateway: &fakeGateway{link: "https://pay.example.test/snap/abc"},
		metrics: metrics.New("test"),
		clock:   newTestClock(time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)),
	}
	f.svc = services.NewInvoiceService(
		db,
		repositories.NewInvoiceRepository(db),
		repositories.NewProductRepository(db),
		f.sender,
		f.gateway,
		"Fashion Boutique",
		f.metrics,
		zap.NewNop(),
		f.clock.Now,
	)
	return f
}

func (f *invoiceFixture) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "General",
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *invoiceFixture) stock(t *testing.T, id string) (int, string) {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return p.Stock, p.Status
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func TestGenerateInvoiceNumber(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	a := services.GenerateInvoiceNumber(now)
	b := services.GenerateInvoiceNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^INV-20260102-[0-9A-F]{8}$`), a)
	assert.NotEqual(t, a, b)
}

func TestCreateInvoiceComputesTotalsAndDecrementsStock(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cotton Tee", "10.00", 5)

	invoice, err := f.svc.Create(ctx, services.CreateInvoiceRequest{
		CustomerName:  "Ana",
		PaymentMethod: models.PaymentCard,
		Items: []services.InvoiceLineRequest{
			{ProductID: &p.ID, Quantity: 3, Discount: dec("10")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "30.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "3.00", invoice.TotalDiscount.StringFixed(2))
	assert.Equal(t, "5.67", invoice.Taxes.StringFixed(2))
	assert.Equal(t, "32.67", invoice.TotalAmount.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusActive, invoice.Status)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "Cotton Tee", invoice.Items[0].ProductName)
	assert.Equal(t, "27.00", invoice.Items[0].Subtotal.StringFixed(2))

	stock, status := f.stock(t, p.ID)
	assert.Equal(t, 2, stock)
	assert.Equal(t, models.StatusActive, status)

	stored, err := f.svc.GetByNumber(ctx, invoice.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, stored.ID)
	assert.Len(t, stored.Items, 1)

	series, err := testutil.GatherAndCount(f.metrics.Registry(), "test_invoices_created_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)
}

func TestCreateInvoiceLastUnitDeactivatesProduct(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	p := f.product(t, "Beret", "15.00", 2)

	_, err := f.svc.Create(context.Background(), services.CreateInvoiceRequest{
		CustomerName:  "Luis",
		PaymentMethod: models.PaymentTransfer,
		Items:         []services.InvoiceLineRequest{{ProductID: &p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	stock, status := f.stock(t, p.ID)
	assert.Equal(t, 0, stock)
	assert.Equal(t, models.StatusInactive, status)
}

func TestCreateInvoiceInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()
	plenty := f.product(t, "Socks", "5.00", 10)
	scarce := f.product(t, "Gloves", "12.00", 1)

	_, err := f.svc.Create(ctx, services.CreateInvoiceRequest{
		CustomerName:  "Eva",
		PaymentMethod: models.PaymentCard,
		Items: []services.InvoiceLineRequest{
			{ProductID: &plenty.ID, Quantity: 4},
			{ProductID: &scarce.ID, Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	stock, _ := f.stock(t, plenty.ID)
	assert.Equal(t, 10, stock)

	var count int64
	require.NoError(t, f.db.Model(&models.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateInvoiceCash(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cotton Tee", "10.00", 10)

	req := services.CreateInvoiceRequest{
		CustomerName:  "Ana",
		PaymentMethod: models.PaymentCash,
		CashReceived:  decPtr("50.00"),
		Items:         []services.InvoiceLineRequest{{ProductID: &p.ID, Quantity: 3, Discount: dec("10")}},
	}
	invoice, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "17.33", invoice.ChangeGiven.StringFixed(2))
	assert.Equal(t, "50.00", invoice.CashReceived.StringFixed(2))

	req.CashReceived = decPtr("32.66")
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, services.ErrInsufficientCash)

	req.CashReceived = nil
	_, err = f.svc.Create(ctx, req)
	var vErr *services.ValidationError
	assert.ErrorAs(t, err, &vErr)

	stock, _ := f.stock(t, p.ID)
	assert.Equal(t, 7, stock)
}

func TestCreateInvoiceFreeFormLinesAndValidation(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()

	invoice, err := f.svc.Create(ctx, services.CreateInvoiceRequest{
		CustomerName:   "Walk-in",
		PaymentMethod:  models.PaymentCard,
		GlobalDiscount: dec("10"),
		Items: []services.InvoiceLineRequest{
			{Name: "Alteration", Price: decPtr("20.00"), Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, invoice.Items[0].ProductID)
	assert.Equal(t, "2.00", invoice.TotalDiscount.StringFixed(2))

	empty, err := f.svc.Create(ctx, services.CreateInvoiceRequest{CustomerName: "Nobody", PaymentMethod: models.PaymentCard})
	require.NoError(t, err)
	assert.True(t, empty.TotalAmount.IsZero())

	invalid := []services.CreateInvoiceRequest{
		{PaymentMethod: models.PaymentCard},
		{CustomerName: "X", PaymentMethod: "barter"},
		{CustomerName: "X", PaymentMethod: models.PaymentCard, GlobalDiscount: dec("101")},
		{CustomerName: "X", PaymentMethod: models.PaymentCard, Items: []services.InvoiceLineRequest{{Name: "A", Price: decPtr("1"), Quantity: 0}}},
		{CustomerName: "X", PaymentMethod: models.PaymentCard, Items: []services.InvoiceLineRequest{{Name: "A", Price: decPtr("1"), Quantity: 1, Discount: dec("-5")}}},
		{CustomerName: "X", PaymentMethod: models.PaymentCard, Items: []services.InvoiceLineRequest{{Quantity: 1}}},
		{CustomerName: "X", PaymentMethod: models.PaymentCard, Items: []services.InvoiceLineRequest{{ProductID: strPtr("nope"), Quantity: 1}}},
	}
	for i, req := range invalid {
		_, err := f.svc.Create(ctx, req)
		var vErr *services.ValidationError
		assert.ErrorAs(t, err, &vErr, "request %d", i)
	}
}

func TestCreateInvoiceKeepsLongNames(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	name := strings.Repeat("Hand-embroidered silk evening gown ", 6)[:200]
	product := f.product(t, name, "99.00", 2)

	req := services.CreateInvoiceRequest{
		CustomerName:  "Walk-in",
		CustomerID:    strings.Repeat("7", 50),
		PaymentMethod: models.PaymentCard,
		Items:         []services.InvoiceLineRequest{{ProductID: &product.ID, Quantity: 1}},
	}
	require.NoError(t, helpers.NewValidator().Struct(req))

	invoice, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, name, invoice.Items[0].ProductName)
	assert.Equal(t, req.CustomerID, invoice.CustomerID)

	req.CustomerID = strings.Repeat("7", 51)
	assert.Error(t, helpers.NewValidator().Struct(req))
	req.CustomerID = ""
	req.Items = []services.InvoiceLineRequest{{Name: strings.Repeat("x", 256), Price: decPtr("1"), Quantity: 1}}
	assert.Error(t, helpers.NewValidator().Struct(req))
}

func TestCreateInvoiceOnlinePayment(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.product(t, "Trench Coat", "120.00", 3)

	invoice, err := f.svc.Create(ctx, services.CreateInvoiceRequest{
		CustomerName:  "Mia",
		PaymentMethod: models.PaymentOnline,
		Items:         []services.InvoiceLineRequest{{ProductID: &p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, f.gateway.link, invoice.PaymentDetails)
	assert.Equal(t, []string{invoice.InvoiceNumber}, f.gateway.created)

	stored, err := f.svc.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.gateway.link, stored.PaymentDetails)

	f.gateway.status = &services.PaymentStatus{InvoiceNumber: invoice.InvoiceNumber, TransactionStatus: "settlement"}
	status, err := f.svc.PaymentStatus(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "settlement", status.TransactionStatus)

	f.gateway.err = services.ErrPaymentGateway
	_, err = f.svc.Create(ctx, services.CreateInvoiceRequest{
		CustomerName:  "Mia",
		PaymentMethod: models.PaymentOnline,
		Items:         []services.InvoiceLineRequest{{ProductID: &p.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, services.ErrPaymentGateway)

	stock, _ := f.stock(t, p.ID)
	assert.Equal(t, 2, stock)
}

func TestPaymentStatusRequiresOnlineInvoice(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)

	invoice, err := f.svc.Create(context.Background(), services.CreateInvoiceRequest{CustomerName: "Ana", PaymentMethod: models.PaymentCard})
	require.NoError(t, err)

	_, err = f.svc.PaymentStatus(context.Background(), invoice.ID)
	var vErr *services.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestVoidInvoiceRestoresStock(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.product(t, "Loafers", "80.00", 1)

	invoice, err := f.svc.Create(ctx, services.CreateInvoiceRequest{
		CustomerName:  "Sam",
		PaymentMethod: models.PaymentCard,
		Items:         []services.InvoiceLineRequest{{ProductID: &p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, status := f.stock(t, p.ID)
	assert.Equal(t, models.StatusInactive, status)

	voided, err := f.svc.Void(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusVoided, voided.Status)

	stock, status := f.stock(t, p.ID)
	assert.Equal(t, 1, stock)
	assert.Equal(t, models.StatusActive, status)

	_, err = f.svc.Void(ctx, invoice.ID)
	assert.ErrorIs(t, err, services.ErrInvoiceVoided)
	stock, _ = f.stock(t, p.ID)
	assert.Equal(t, 1, stock)

	_, err = f.svc.Void(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestSendInvoiceEmail(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()

	invoice, err := f.svc.Create(ctx, services.CreateInvoiceRequest{
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		PaymentMethod: models.PaymentCard,
		Items:         []services.InvoiceLineRequest{{Name: "Gift Card", Price: decPtr("25.00"), Quantity: 1}},
	})
	require.NoError(t, err)

	f.sender.err = errSMTPDown
	_, err = f.svc.SendEmail(ctx, invoice.ID)
	assert.ErrorIs(t, err, services.ErrEmailDelivery)
	stored, err := f.svc.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.False(t, stored.EmailSent)
	assert.Equal(t, models.InvoiceStatusActive, stored.Status)

	f.sender.err = nil
	sent, err := f.svc.SendEmail(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, sent.EmailSent)
	assert.Equal(t, models.InvoiceStatusSent, sent.Status)

	msg := f.sender.last()
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Contains(t, msg.Subject, invoice.InvoiceNumber)
	assert.Contains(t, msg.Body, "Gift Card")

	noEmail, err := f.svc.Create(ctx, services.CreateInvoiceRequest{CustomerName: "Bob", PaymentMethod: models.PaymentCard})
	require.NoError(t, err)
	_, err = f.svc.SendEmail(ctx, noEmail.ID)
	assert.ErrorIs(t, err, services.ErrNoCustomerEmail)

	_, err = f.svc.Void(ctx, invoice.ID)
	require.NoError(t, err)
	_, err = f.svc.SendEmail(ctx, invoice.ID)
	assert.ErrorIs(t, err, services.ErrInvoiceVoided)
}

func TestDailySummaryIgnoresVoidedInvoices(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	ctx := context.Background()

	create := func(price string) *models.Invoice {
		inv, err := f.svc.Create(ctx, services.CreateInvoiceRequest{
			CustomerName:  "Ana",
			PaymentMethod: models.PaymentCard,
			Items:         []services.InvoiceLineRequest{{Name: "Item", Price: decPtr(price), Quantity: 1}},
		})
		require.NoError(t, err)
		return inv
	}
	create("100.00")
	create("50.00")
	voided := create("70.00")
	_, err := f.svc.Void(ctx, voided.ID)
	require.NoError(t, err)

	summary, err := f.svc.DailySummary(ctx, f.svc.Today())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", summary.Date)
	assert.EqualValues(t, 2, summary.TotalInvoices)
	assert.Equal(t, "181.50", summary.TotalSales.StringFixed(2))
	assert.Equal(t, "90.75", summary.AverageTicket.StringFixed(2))

	empty, err := f.svc.DailySummary(ctx, f.svc.Today().AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, empty.TotalInvoices)
	assert.True(t, empty.AverageTicket.IsZero())
}
