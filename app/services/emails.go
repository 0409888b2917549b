package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/utils/format"
)

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 20px auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
        .header { background-color: #f8f8f8; padding: 10px 0; text-align: center; border-bottom: 1px solid #ddd; }
        .content { padding: 20px; }
        .code { font-size: 2em; font-weight: bold; color: #6c757d; margin: 20px 0; padding: 10px; background-color: #f1f1f1; border-radius: 5px; display: inline-block; letter-spacing: 4px; }
        .button { display: inline-block; padding: 10px 20px; background-color: #343a40; color: #fff; text-decoration: none; border-radius: 5px; }
        table { width: 100%%; border-collapse: collapse; }
        th, td { padding: 6px; border-bottom: 1px solid #eee; text-align: left; }
        .footer { font-size: 0.8em; color: #777; text-align: center; margin-top: 20px; border-top: 1px solid #ddd; padding-top: 10px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>%s</h2></div>
        <div class="content">%s</div>
        <div class="footer"><p>&copy; %d %s</p></div>
    </div>
</body>
</html>`

func wrapEmail(appName, title, content string, year int) string {
	name := html.EscapeString(appName)
	return fmt.Sprintf(emailLayout, html.EscapeString(title), html.EscapeString(title), content, year, name)
}

func BuildVerificationEmailBody(appName, code string, expiryMinutes int, now time.Time) string {
	content := fmt.Sprintf(`
            <p>We received a request to reset the password of your account.</p>
            <p>Enter this verification code to continue:</p>
            <p class="code">%s</p>
            <p>The code expires in <strong>%d minutes</strong>.</p>
            <p>If you did not ask for a password reset you can ignore this email.</p>`,
		html.EscapeString(code), expiryMinutes)
	return wrapEmail(appName, "Your verification code", content, now.Year())
}

func BuildInvitationEmailBody(appName, role, link, message string, expiresAt time.Time) string {
	var note string
	if strings.TrimSpace(message) != "" {
		note = fmt.Sprintf("<p><em>%s</em></p>", html.EscapeString(message))
	}
	content := fmt.Sprintf(`
            <p>You have been invited to join %s as <strong>%s</strong>.</p>
            %s
            <p><a class="button" href="%s">Create your account</a></p>
            <p>This invitation is valid until %s.</p>`,
		html.EscapeString(appName), html.EscapeString(role), note,
		html.EscapeString(link), expiresAt.UTC().Format("2006-01-02 15:04 MST"))
	return wrapEmail(appName, "You are invited", content, expiresAt.Year())
}

func BuildWelcomeEmailBody(appName, username string, now time.Time) string {
	content := fmt.Sprintf(`
            <p>Hi %s,</p>
            <p>Your account at %s is ready. You can sign in with your username or email.</p>`,
		html.EscapeString(username), html.EscapeString(appName))
	return wrapEmail(appName, "Welcome", content, now.Year())
}

func BuildInvoiceEmailBody(appName string, invoice *models.Invoice) string {
	var rows strings.Builder
	for _, item := range invoice.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(item.ProductName),
			item.Quantity,
			format.Money(item.ProductPrice),
			format.Percent(item.Discount),
			format.Money(item.Subtotal),
		)
	}

	var cash string
	if invoice.PaymentMethod == models.PaymentCash {
		cash = fmt.Sprintf("<p>Cash received: %s<br>Change: %s</p>",
			format.Money(invoice.CashReceived), format.Money(invoice.ChangeGiven))
	}

	content := fmt.Sprintf(`
            <p>Dear %s,</p>
            <p>Thank you for shopping with us. Here is a copy of invoice <strong>%s</strong> dated %s.</p>
            <table>
                <tr><th>Product</th><th>Qty</th><th>Price</th><th>Discount</th><th>Subtotal</th></tr>
                %s
            </table>
            <p>Subtotal: %s<br>Discount: %s<br>Taxes: %s<br><strong>Total: %s</strong></p>
            <p>Payment method: %s</p>
            %s`,
		html.EscapeString(invoice.CustomerName),
		html.EscapeString(invoice.InvoiceNumber),
		invoice.InvoiceDate.Format("2006-01-02"),
		rows.String(),
		format.Money(invoice.Subtotal),
		format.Money(invoice.TotalDiscount),
		format.Money(invoice.Taxes),
		format.Money(invoice.TotalAmount),
		html.EscapeString(invoice.PaymentMethod),
		cash,
	)
	return wrapEmail(appName, "Invoice "+invoice.InvoiceNumber, content, invoice.InvoiceDate.Year())
}
