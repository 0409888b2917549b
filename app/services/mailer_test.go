package services

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerSendHTMLEmail(t *testing.T) {
	m := NewMailer(Config{Host: "smtp.example.test", Port: "587", Username: "user", Password: "pass", From: "shop@example.test"})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	require.NoError(t, m.SendHTMLEmail("ana@example.com", "Hello", "<p>Hi</p>"))
	assert.Equal(t, "smtp.example.test:587", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.True(t, strings.HasPrefix(msg, "From: shop@example.test\r\nTo: ana@example.com\r\nSubject: Hello\r\n"))
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n<p>Hi</p>")

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("dial tcp: timeout") }
	assert.ErrorIs(t, m.SendHTMLEmail("ana@example.com", "Hello", "x"), ErrEmailDelivery)
}

func TestMailerNotConfigured(t *testing.T) {
	m := NewMailer(Config{})
	assert.False(t, m.Configured())
	assert.ErrorIs(t, m.SendHTMLEmail("ana@example.com", "Hello", "x"), ErrEmailDelivery)
}

func TestEmailBodiesEscapeInput(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	body := BuildInvitationEmailBody("Boutique", models.RoleCustomer, "https://shop.example.test/register/tok", "<script>x</script>", now)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "https://shop.example.test/register/tok")

	body = BuildVerificationEmailBody("Boutique", "123456", 10, now)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "10 minutes")

	invoice := &models.Invoice{
		InvoiceNumber: "INV-20260201-AAAAAAAA",
		InvoiceDate:   now,
		CustomerName:  "Ana & Co",
		PaymentMethod: models.PaymentCash,
		CashReceived:  decimal.RequireFromString("50"),
		ChangeGiven:   decimal.RequireFromString("17.33"),
		TotalAmount:   decimal.RequireFromString("32.67"),
		Items: []models.InvoiceItem{
			{ProductName: "Tee", Quantity: 3, ProductPrice: decimal.RequireFromString("10"), Discount: decimal.RequireFromString("10"), Subtotal: decimal.RequireFromString("27")},
		},
	}
	body = BuildInvoiceEmailBody("Boutique", invoice)
	assert.Contains(t, body, "Ana &amp; Co")
	assert.Contains(t, body, "$32.67")
	assert.Contains(t, body, "$17.33")
	assert.Contains(t, body, "INV-20260201-AAAAAAAA")
}
