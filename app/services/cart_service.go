package services

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/utils/calc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available bool            `json:"available"`
}

type CartView struct {
	Items    []CartLine      `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Taxes    decimal.Decimal `json:"taxes"`
	Total    decimal.Decimal `json:"total"`
}

type CheckoutRequest struct {
	CustomerName    string           `json:"customer_name" validate:"max=100"`
	CustomerID      string           `json:"customer_id" validate:"max=50"`
	CustomerEmail   string           `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string           `json:"customer_phone" validate:"max=20"`
	CustomerAddress string           `json:"customer_address"`
	PaymentMethod   string           `json:"payment_method" validate:"required,oneof=cash card transfer online"`
	PaymentDetails  string           `json:"payment_details"`
	CashReceived    *decimal.Decimal `json:"cash_received"`
}

type CartService struct {
	db          *gorm.DB
	cartRepo    repositories.CartItemRepositoryImpl
	productRepo repositories.ProductRepositoryImpl
	userRepo    repositories.UserRepositoryImpl
	invoices    *InvoiceService
	log         *zap.Logger
}

func NewCartService(
	db *gorm.DB,
	cartRepo repositories.CartItemRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	userRepo repositories.UserRepositoryImpl,
	invoices *InvoiceService,
	log *zap.Logger,
) *CartService {
	return &CartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		invoices:    invoices,
		log:         log,
	}
}

func (s *CartService) loadSellable(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if product.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: %q is not available", ErrInsufficientStock, product.Name)
	}
	return product, nil
}

// Add puts qty units of a product in the cart, merging with an existing row.
func (s *CartService) Add(ctx context.Context, userID, productID string, qty int) (*models.CartItem, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, NewValidationError("quantity", "must be positive")
	}

	product, err := s.loadSellable(ctx, productID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	wanted := qty
	if item != nil {
		wanted += item.Quantity
	}
	if wanted > product.Stock {
		return nil, fmt.Errorf("%w: %q has %d left", ErrInsufficientStock, product.Name, product.Stock)
	}

	if item == nil {
		item = &models.CartItem{UserID: userID, ProductID: productID, Quantity: wanted}
		if err := s.cartRepo.Add(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	} else {
		item.Quantity = wanted
		if err := s.cartRepo.Update(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}
	item.Product = product
	return item, nil
}

// UpdateQuantity sets the quantity of a cart row; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, qty int) error {
	item, err := s.cartRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to load cart item: %w", err)
	}
	if item == nil {
		return ErrNotFound
	}
	if qty <= 0 {
		return s.Remove(ctx, userID, productID)
	}

	product, err := s.loadSellable(ctx, productID)
	if err != nil {
		return err
	}
	if qty > product.Stock {
		return fmt.Errorf("%w: %q has %d left", ErrInsufficientStock, product.Name, product.Stock)
	}

	item.Quantity = qty
	if err := s.cartRepo.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.cartRepo.Delete(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.ClearByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) Count(ctx context.Context, userID string) (int64, error) {
	count, err := s.cartRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}

func (s *CartService) View(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	view := &CartView{Items: make([]CartLine, 0, len(items))}
	inputs := make([]calc.LineInput, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		line := CartLine{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Image:     item.Product.Image,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			Subtotal:  calc.CalculateLine(calc.LineInput{UnitPrice: item.Product.Price, Quantity: item.Quantity}).Subtotal,
			Available: item.Product.Status == models.StatusActive && item.Product.Stock >= item.Quantity,
		}
		view.Items = append(view.Items, line)
		view.Count += item.Quantity
		inputs = append(inputs, calc.LineInput{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}

	totals, err := calc.CalculateInvoice(inputs, calc.InvoiceOptions{})
	if err != nil {
		return nil, err
	}
	view.Subtotal = totals.Subtotal
	view.Taxes = totals.Taxes
	view.Total = totals.TotalAmount
	return view, nil
}

// Checkout turns the cart into an invoice and empties it.
func (s *CartService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*models.Invoice, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	invoiceReq := CreateInvoiceRequest{
		CustomerName:    firstNonEmpty(req.CustomerName, user.Username),
		CustomerID:      req.CustomerID,
		CustomerEmail:   firstNonEmpty(req.CustomerEmail, user.Email),
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  req.PaymentDetails,
		CashReceived:    req.CashReceived,
		UserID:          &user.ID,
	}
	for _, item := range items {
		productID := item.ProductID
		invoiceReq.Items = append(invoiceReq.Items, InvoiceLineRequest{ProductID: &productID, Quantity: item.Quantity})
	}

	invoice, err := s.invoices.create(ctx, invoiceReq, func(tx *gorm.DB) error {
		return s.cartRepo.WithTx(tx).ClearByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cart checked out", zap.String("user_id", userID), zap.String("invoice_number", invoice.InvoiceNumber))
	return invoice, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
