package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerCustomer(t *testing.T, f *accountFixture, username, email string) *models.User {
	t.Helper()
	user, err := f.accounts.Register(context.Background(), services.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterCustomer(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()

	user := registerCustomer(t, f, "maria", "Maria@Example.com")
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Equal(t, "maria@example.com", user.Email)

	_, err := f.accounts.Register(ctx, services.RegisterRequest{Username: "other", Email: "maria@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	assert.ErrorIs(t, err, services.ErrEmailRegistered)

	_, err = f.accounts.Register(ctx, services.RegisterRequest{Username: "maria", Email: "new@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	assert.ErrorIs(t, err, services.ErrUsernameTaken)

	_, err = f.accounts.Register(ctx, services.RegisterRequest{Username: "short", Email: "short@example.com", Password: "123", ConfirmPassword: "123"})
	var vErr *services.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = f.accounts.Register(ctx, services.RegisterRequest{Username: "typo", Email: "typo@example.com", Password: "secret123", ConfirmPassword: "secret124"})
	assert.ErrorAs(t, err, &vErr)
}

func TestRegisterSucceedsWhenWelcomeEmailFails(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	f.sender.err = errSMTPDown

	user := registerCustomer(t, f, "quiet", "quiet@example.com")
	assert.NotEmpty(t, user.ID)
	assert.Zero(t, f.sender.count())
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()
	registered := registerCustomer(t, f, "maria", "maria@example.com")

	byName, err := f.accounts.Authenticate(ctx, "maria", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byName.ID)

	byEmail, err := f.accounts.Authenticate(ctx, "maria@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byEmail.ID)

	_, err = f.accounts.Authenticate(ctx, "Maria@Example.COM", "secret123")
	require.NoError(t, err)

	_, err = f.accounts.Authenticate(ctx, "maria", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = f.accounts.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = f.accounts.Authenticate(ctx, "", "")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthenticateWithMixedCaseRegisteredEmail(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	registered := registerCustomer(t, f, "alice", "Alice@Example.com")

	user, err := f.accounts.Authenticate(context.Background(), "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestProfileAndPasswordChanges(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()
	user := registerCustomer(t, f, "maria", "maria@example.com")
	registerCustomer(t, f, "pedro", "pedro@example.com")

	_, err := f.accounts.UpdateProfile(ctx, user.ID, services.ProfileUpdate{Username: strPtr("pedro")})
	assert.ErrorIs(t, err, services.ErrUsernameTaken)

	updated, err := f.accounts.UpdateProfile(ctx, user.ID, services.ProfileUpdate{Email: strPtr("Maria.R@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, "maria.r@example.com", updated.Email)
	assert.Equal(t, "maria", updated.Username)

	err = f.accounts.ChangePassword(ctx, user.ID, services.ChangePasswordRequest{CurrentPassword: "bad", NewPassword: "newsecret", ConfirmPassword: "newsecret"})
	var vErr *services.ValidationError
	assert.ErrorAs(t, err, &vErr)

	require.NoError(t, f.accounts.ChangePassword(ctx, user.ID, services.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret", ConfirmPassword: "newsecret"}))
	_, err = f.accounts.Authenticate(ctx, "maria", "newsecret")
	assert.NoError(t, err)

	_, err = f.accounts.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCreateAdminAndStats(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()

	admin, err := f.accounts.CreateAdmin(ctx, "root", "root@example.com", "supersecret")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	registerCustomer(t, f, "maria", "maria@example.com")

	stats, err := f.accounts.UserStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Admins)
	assert.EqualValues(t, 1, stats.Customers)

	users, page, err := f.accounts.ListUsers(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestVerificationCodeResetFlow(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()
	registerCustomer(t, f, "maria", "maria@example.com")
	sentBefore := f.sender.count()

	require.NoError(t, f.verify.RequestCode(ctx, "nobody@example.com"))
	assert.Equal(t, sentBefore, f.sender.count())

	require.NoError(t, f.verify.RequestCode(ctx, "maria@example.com"))
	stored, err := f.users.FindByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationCode)
	code := *stored.VerificationCode
	assert.Len(t, code, services.VerificationCodeLength)
	assert.Contains(t, f.sender.last().Body, code)

	assert.ErrorIs(t, f.verify.VerifyCode(ctx, "maria@example.com", "000000x"), services.ErrInvalidCode)
	require.NoError(t, f.verify.VerifyCode(ctx, "maria@example.com", code))
	require.NoError(t, f.verify.VerifyCode(ctx, "maria@example.com", code))

	err = f.verify.ResetPassword(ctx, "maria@example.com", code, "brandnew", "brandnew")
	require.NoError(t, err)

	_, err = f.accounts.Authenticate(ctx, "maria", "brandnew")
	require.NoError(t, err)
	assert.ErrorIs(t, f.verify.VerifyCode(ctx, "maria@example.com", code), services.ErrInvalidCode)
}

func TestVerificationCodeExpires(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	ctx := context.Background()
	registerCustomer(t, f, "maria", "maria@example.com")

	require.NoError(t, f.verify.RequestCode(ctx, "maria@example.com"))
	stored, err := f.users.FindByEmail(ctx, "maria@example.com")
	require.NoError(t, err)
	code := *stored.VerificationCode

	f.clock.Advance(services.DefaultVerificationCodeTTL - time.Second)
	require.NoError(t, f.verify.VerifyCode(ctx, "maria@example.com", code))

	f.clock.Advance(time.Second)
	assert.ErrorIs(t, f.verify.VerifyCode(ctx, "maria@example.com", code), services.ErrInvalidCode)
	assert.ErrorIs(t, f.verify.ResetPassword(ctx, "maria@example.com", code, "brandnew", "brandnew"), services.ErrInvalidCode)
}

func TestRequestCodeEmailFailure(t *testing.T) {
	t.Parallel()
	f := newAccountFixture(t)
	registerCustomer(t, f, "maria", "maria@example.com")

	f.sender.err = errSMTPDown
	err := f.verify.RequestCode(context.Background(), "maria@example.com")
	assert.ErrorIs(t, err, services.ErrEmailDelivery)
}
