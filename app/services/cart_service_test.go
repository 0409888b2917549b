package services_test

import (
	"context"
	"testing"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/repositories"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	*invoiceFixture
	cart *services.CartService
	user *models.User
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	f := newInvoiceFixture(t)
	users := repositories.NewUserRepository(f.db)

	user := &models.User{Username: "shopper", Email: "shopper@example.com", Password: "secret123", Role: models.RoleCustomer}
	require.NoError(t, users.Create(context.Background(), user))

	cart := services.NewCartService(
		f.db,
		repositories.NewCartItemRepository(f.db),
		repositories.NewProductRepository(f.db),
		users,
		f.svc,
		zap.NewNop(),
	)
	return &cartFixture{invoiceFixture: f, cart: cart, user: user}
}

func TestCartAddMergesAndChecksStock(t *testing.T) {
	t.Parallel()
	f := newCartFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cotton Tee", "10.00", 3)

	item, err := f.cart.Add(ctx, f.user.ID, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	item, err = f.cart.Add(ctx, f.user.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	_, err = f.cart.Add(ctx, f.user.ID, p.ID, 1)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	_, err = f.cart.Add(ctx, f.user.ID, p.ID, -1)
	var vErr *services.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = f.cart.Add(ctx, f.user.ID, "missing", 1)
	assert.ErrorIs(t, err, services.ErrNotFound)

	count, err := f.cart.Count(ctx, f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestCartRejectsInactiveProduct(t *testing.T) {
	t.Parallel()
	f := newCartFixture(t)
	p := f.product(t, "Sold Out Cap", "9.00", 0)

	_, err := f.cart.Add(context.Background(), f.user.ID, p.ID, 1)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
}

func TestCartUpdateQuantityAndView(t *testing.T) {
	t.Parallel()
	f := newCartFixture(t)
	ctx := context.Background()
	tee := f.product(t, "Cotton Tee", "10.00", 5)
	hat := f.product(t, "Cap", "5.00", 5)

	_, err := f.cart.Add(ctx, f.user.ID, tee.ID, 1)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, f.user.ID, hat.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.cart.UpdateQuantity(ctx, f.user.ID, tee.ID, 2))
	assert.ErrorIs(t, f.cart.UpdateQuantity(ctx, f.user.ID, tee.ID, 6), services.ErrInsufficientStock)

	view, err := f.cart.View(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, "25.00", view.Subtotal.StringFixed(2))
	assert.Equal(t, "5.25", view.Taxes.StringFixed(2))
	assert.Equal(t, "30.25", view.Total.StringFixed(2))

	require.NoError(t, f.cart.UpdateQuantity(ctx, f.user.ID, hat.ID, 0))
	view, err = f.cart.View(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, tee.ID, view.Items[0].ProductID)

	assert.ErrorIs(t, f.cart.UpdateQuantity(ctx, f.user.ID, hat.ID, 1), services.ErrNotFound)

	require.NoError(t, f.cart.Clear(ctx, f.user.ID))
	count, err := f.cart.Count(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCheckoutCreatesInvoiceAndClearsCart(t *testing.T) {
	t.Parallel()
	f := newCartFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cotton Tee", "10.00", 5)

	_, err := f.cart.Checkout(ctx, f.user.ID, services.CheckoutRequest{PaymentMethod: models.PaymentCard})
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	_, err = f.cart.Add(ctx, f.user.ID, p.ID, 2)
	require.NoError(t, err)

	invoice, err := f.cart.Checkout(ctx, f.user.ID, services.CheckoutRequest{PaymentMethod: models.PaymentCard})
	require.NoError(t, err)
	assert.Equal(t, "shopper", invoice.CustomerName)
	assert.Equal(t, "shopper@example.com", invoice.CustomerEmail)
	require.NotNil(t, invoice.UserID)
	assert.Equal(t, f.user.ID, *invoice.UserID)
	assert.Equal(t, "24.20", invoice.TotalAmount.StringFixed(2))

	count, err := f.cart.Count(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	stock, _ := f.stock(t, p.ID)
	assert.Equal(t, 3, stock)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	t.Parallel()
	f := newCartFixture(t)
	ctx := context.Background()
	p := f.product(t, "Cotton Tee", "10.00", 5)

	_, err := f.cart.Add(ctx, f.user.ID, p.ID, 2)
	require.NoError(t, err)

	f.gateway.err = services.ErrPaymentGateway
	_, err = f.cart.Checkout(ctx, f.user.ID, services.CheckoutRequest{PaymentMethod: models.PaymentOnline})
	assert.ErrorIs(t, err, services.ErrPaymentGateway)

	count, err := f.cart.Count(ctx, f.user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	stock, _ := f.stock(t, p.ID)
	assert.Equal(t, 5, stock)
}
