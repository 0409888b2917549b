package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceFilter struct {
	Status string
	Search string
	From   *time.Time
	To     *time.Time
	Page   int
	// PerPage defaults to DefaultPerPage.
	PerPage int
}

type SalesSummary struct {
	TotalSales    decimal.Decimal
	TotalInvoices int64
}

type InvoiceRepositoryImpl interface {
	WithTx(tx *gorm.DB) InvoiceRepositoryImpl
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*models.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, Pagination, error)
	UpdateStatus(ctx context.Context, id, status string) error
	MarkSent(ctx context.Context, id string) error
	UpdatePaymentDetails(ctx context.Context, id, details string) error
	Summary(ctx context.Context, from, to time.Time) (SalesSummary, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepositoryImpl {
	return &invoiceRepository{db}
}

func (r *invoiceRepository) WithTx(tx *gorm.DB) InvoiceRepositoryImpl {
	return &invoiceRepository{tx}
}

// Create inserts the invoice together with its items.
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	return firstOrNil[models.Invoice](r.db.WithContext(ctx).Preload("Items"), "id = ?", id)
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	return firstOrNil[models.Invoice](r.db.WithContext(ctx).Preload("Items"), "invoice_number = ?", number)
}

func (r *invoiceRepository) filtered(ctx context.Context, filter InvoiceFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Invoice{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(invoice_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?", like, like, like)
	}
	if filter.From != nil {
		q = q.Where("invoice_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("invoice_date < ?", *filter.To)
	}
	return q
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, Pagination, error) {
	page, perPage := NormalizePage(filter.Page, filter.PerPage)

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var invoices []models.Invoice
	err := r.filtered(ctx, filter).
		Order("invoice_date DESC").
		Limit(perPage).
		Offset(offset(page, perPage)).
		Find(&invoices).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return invoices, NewPagination(page, perPage, total), nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Update("status", status).Error
}

func (r *invoiceRepository) MarkSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.InvoiceStatusSent,
		"email_sent": true,
	}).Error
}

func (r *invoiceRepository) UpdatePaymentDetails(ctx context.Context, id, details string) error {
	return r.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Update("payment_details", details).Error
}

// Summary totals the non-voided invoices dated in [from, to).
func (r *invoiceRepository) Summary(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Select("total_amount").
		Where("invoice_date >= ? AND invoice_date < ? AND status <> ?", from, to, models.InvoiceStatusVoided).
		Find(&invoices).Error
	if err != nil {
		return SalesSummary{}, err
	}

	summary := SalesSummary{TotalSales: decimal.Zero, TotalInvoices: int64(len(invoices))}
	for _, inv := range invoices {
		summary.TotalSales = summary.TotalSales.Add(inv.TotalAmount)
	}
	return summary, nil
}
