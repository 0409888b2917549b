package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/metrics"
	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/utils/calc"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InvoiceLineRequest struct {
	ProductID *string          `json:"product_id"`
	Name      string           `json:"product_name" validate:"max=255"`
	Price     *decimal.Decimal `json:"product_price"`
	Quantity  int              `json:"quantity"`
	Discount  decimal.Decimal  `json:"discount"`
}

type CreateInvoiceRequest struct {
	CustomerName    string               `json:"customer_name" validate:"required,max=100"`
	CustomerID      string               `json:"customer_id" validate:"max=50"`
	CustomerEmail   string               `json:"customer_email" validate:"omitempty,email,max=120"`
	CustomerPhone   string               `json:"customer_phone" validate:"max=20"`
	CustomerAddress string               `json:"customer_address"`
	PaymentMethod   string               `json:"payment_method" validate:"required,oneof=cash card transfer online"`
	PaymentDetails  string               `json:"payment_details"`
	CashReceived    *decimal.Decimal     `json:"cash_received"`
	GlobalDiscount  decimal.Decimal      `json:"global_discount"`
	Items           []InvoiceLineRequest `json:"items" validate:"dive"`
	SendEmail       bool                 `json:"send_email"`
	UserID          *string              `json:"-"`
}

type DailySummary struct {
	Date          string          `json:"date"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalInvoices int64           `json:"total_invoices"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

type InvoiceService struct {
	db          *gorm.DB
	invoiceRepo repositories.InvoiceRepositoryImpl
	productRepo repositories.ProductRepositoryImpl
	sender      EmailSender
	gateway     PaymentGateway
	appName     string
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         Clock
}

func NewInvoiceService(
	db *gorm.DB,
	invoiceRepo repositories.InvoiceRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	sender EmailSender,
	gateway PaymentGateway,
	appName string,
	m *metrics.Metrics,
	log *zap.Logger,
	now Clock,
) *InvoiceService {
	if gateway == nil {
		gateway = DisabledGateway{}
	}
	return &InvoiceService{
		db:          db,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		sender:      sender,
		gateway:     gateway,
		appName:     appName,
		metrics:     m,
		log:         log,
		now:         defaultClock(now),
	}
}

// GenerateInvoiceNumber returns INV-YYYYMMDD-XXXXXXXX.
func GenerateInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

func validateLines(lines []InvoiceLineRequest) error {
	for i, line := range lines {
		if line.Quantity < 1 {
			return NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if line.Discount.IsNegative() || line.Discount.GreaterThan(decimal.NewFromInt(100)) {
			return NewValidationError(fmt.Sprintf("items[%d].discount", i), "must be between 0 and 100")
		}
		if line.ProductID == nil || *line.ProductID == "" {
			if strings.TrimSpace(line.Name) == "" || line.Price == nil {
				return NewValidationError(fmt.Sprintf("items[%d]", i), "free-form lines need product_name and product_price")
			}
		}
		if line.Price != nil {
			if err := validatePrice(*line.Price); err != nil {
				return err
			}
		}
	}
	return nil
}

// Create persists an invoice, its items and the stock movements in one transaction.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	return s.create(ctx, req, nil)
}

// create runs afterCreate inside the invoice transaction so callers can commit
// their own writes atomically with the invoice.
func (s *InvoiceService) create(ctx context.Context, req CreateInvoiceRequest, afterCreate func(tx *gorm.DB) error) (*models.Invoice, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, NewValidationError("customer_name", "is required")
	}
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, NewValidationError("payment_method", "must be one of cash, card, transfer, online")
	}
	if req.GlobalDiscount.IsNegative() || req.GlobalDiscount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, NewValidationError("global_discount", "must be between 0 and 100")
	}
	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	now := s.now()
	invoice := &models.Invoice{
		InvoiceNumber:   GenerateInvoiceNumber(now),
		InvoiceDate:     now,
		UserID:          req.UserID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerID:      strings.TrimSpace(req.CustomerID),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  strings.TrimSpace(req.PaymentDetails),
		Status:          models.InvoiceStatusActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		inputs := make([]calc.LineInput, 0, len(req.Items))
		items := make([]models.InvoiceItem, 0, len(req.Items))
		for i, line := range req.Items {
			item := models.InvoiceItem{
				ProductName: strings.TrimSpace(line.Name),
				Quantity:    line.Quantity,
				Discount:    line.Discount,
			}
			if line.Price != nil {
				item.ProductPrice = *line.Price
			}

			if line.ProductID != nil && *line.ProductID != "" {
				product, err := products.GetByID(ctx, *line.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return NewValidationError(fmt.Sprintf("items[%d].product_id", i), "unknown product")
				}
				if product.Stock < line.Quantity {
					return fmt.Errorf("%w: %q has %d left, %d requested", ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
				}
				product.Stock -= line.Quantity
				product.Status = models.DeriveStatus(product.Stock)
				if err := products.Update(ctx, product); err != nil {
					return err
				}

				item.ProductID = &product.ID
				if item.ProductName == "" {
					item.ProductName = product.Name
				}
				if line.Price == nil {
					item.ProductPrice = product.Price
				}
			}

			inputs = append(inputs, calc.LineInput{
				UnitPrice:       item.ProductPrice,
				Quantity:        item.Quantity,
				DiscountPercent: item.Discount,
			})
			items = append(items, item)
		}

		opts := calc.InvoiceOptions{GlobalDiscountPercent: req.GlobalDiscount}
		if req.PaymentMethod == models.PaymentCash {
			opts.Cash = true
			if req.CashReceived == nil {
				return NewValidationError("cash_received", "is required for cash payments")
			}
			opts.CashReceived = *req.CashReceived
		}
		totals, err := calc.CalculateInvoice(inputs, opts)
		if err != nil {
			return err
		}

		for i := range items {
			items[i].DiscountAmount = totals.Lines[i].DiscountAmount
			items[i].Subtotal = totals.Lines[i].Subtotal
		}
		invoice.Items = items
		invoice.Subtotal = totals.Subtotal
		invoice.TotalDiscount = totals.TotalDiscount
		invoice.Taxes = totals.Taxes
		invoice.TotalAmount = totals.TotalAmount
		invoice.CashReceived = totals.CashReceived
		invoice.ChangeGiven = totals.ChangeGiven

		invoices := s.invoiceRepo.WithTx(tx)
		if err := invoices.Create(ctx, invoice); err != nil {
			return err
		}

		if invoice.PaymentMethod == models.PaymentOnline {
			link, err := s.gateway.CreatePaymentLink(ctx, invoice)
			if err != nil {
				return err
			}
			invoice.PaymentDetails = link
			if err := invoices.UpdatePaymentDetails(ctx, invoice.ID, link); err != nil {
				return err
			}
		}

		if afterCreate != nil {
			return afterCreate(tx)
		}
		return nil
	})
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) || errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrInsufficientCash) {
			return nil, err
		}
		if errors.Is(err, ErrPaymentGateway) {
			s.log.Error("payment gateway rejected invoice", zap.String("invoice_number", invoice.InvoiceNumber), zap.Error(err))
			return nil, err
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.metrics.InvoiceCreated(invoice.PaymentMethod)
	s.log.Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total", invoice.TotalAmount.StringFixed(2)),
		zap.Int("items", len(invoice.Items)),
	)
	return invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, ErrNotFound
	}
	return invoice, nil
}

func (s *InvoiceService) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, ErrNotFound
	}
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, filter repositories.InvoiceFilter) ([]models.Invoice, repositories.Pagination, error) {
	invoices, page, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, repositories.Pagination{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, page, nil
}

// Void cancels an invoice and puts the sold units back into stock.
func (s *InvoiceService) Void(ctx context.Context, id string) (*models.Invoice, error) {
	var voided *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := s.invoiceRepo.WithTx(tx)
		products := s.productRepo.WithTx(tx)

		invoice, err := invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return ErrNotFound
		}
		if invoice.Status == models.InvoiceStatusVoided {
			return ErrInvoiceVoided
		}

		for _, item := range invoice.Items {
			if item.ProductID == nil {
				continue
			}
			product, err := products.GetByID(ctx, *item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				continue
			}
			product.Stock += item.Quantity
			product.Status = models.DeriveStatus(product.Stock)
			if err := products.Update(ctx, product); err != nil {
				return err
			}
		}

		if err := invoices.UpdateStatus(ctx, invoice.ID, models.InvoiceStatusVoided); err != nil {
			return err
		}
		invoice.Status = models.InvoiceStatusVoided
		voided = invoice
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvoiceVoided) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to void invoice: %w", err)
	}

	s.metrics.InvoiceVoided()
	s.log.Info("invoice voided", zap.String("invoice_number", voided.InvoiceNumber))
	return voided, nil
}

// SendEmail mails a copy of the invoice to the customer and marks it sent.
func (s *InvoiceService) SendEmail(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusVoided {
		return nil, ErrInvoiceVoided
	}
	if invoice.CustomerEmail == "" {
		return nil, ErrNoCustomerEmail
	}

	subject := fmt.Sprintf("%s - Invoice %s", s.appName, invoice.InvoiceNumber)
	err = s.sender.SendHTMLEmail(invoice.CustomerEmail, subject, BuildInvoiceEmailBody(s.appName, invoice))
	s.metrics.EmailSent("invoice", err)
	if err != nil {
		s.log.Error("failed to send invoice email",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("to", invoice.CustomerEmail),
			zap.Error(err),
		)
		if errors.Is(err, ErrEmailDelivery) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	if err := s.invoiceRepo.MarkSent(ctx, invoice.ID); err != nil {
		return nil, fmt.Errorf("failed to mark invoice as sent: %w", err)
	}
	invoice.Status = models.InvoiceStatusSent
	invoice.EmailSent = true
	return invoice, nil
}

// DailySummary reports sales of non-voided invoices for the UTC day containing day.
func (s *InvoiceService) DailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	summary, err := s.invoiceRepo.Summary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise sales: %w", err)
	}

	average := decimal.Zero
	if summary.TotalInvoices > 0 {
		average = summary.TotalSales.Div(decimal.NewFromInt(summary.TotalInvoices)).Round(2)
	}
	return &DailySummary{
		Date:          from.Format("2006-01-02"),
		TotalSales:    summary.TotalSales,
		TotalInvoices: summary.TotalInvoices,
		AverageTicket: average,
	}, nil
}

func (s *InvoiceService) Today() time.Time {
	return s.now()
}

func (s *InvoiceService) PaymentStatus(ctx context.Context, id string) (*PaymentStatus, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.PaymentMethod != models.PaymentOnline {
		return nil, NewValidationError("payment_method", "invoice was not paid online")
	}
	return s.gateway.CheckStatus(ctx, invoice.InvoiceNumber)
}
