package services

import (
	"errors"
	"fmt"

	"github.com/Rakhulsr/fashion-boutique/app/utils/calc"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrInsufficientStock  = errors.New("insufficient product stock")
	ErrInsufficientCash   = calc.ErrInsufficientCash
	ErrCategoryInUse      = errors.New("category still has products")
	ErrAttributeInUse     = errors.New("attribute is used by product variants")
	ErrDuplicateName      = errors.New("name already exists")
	ErrDuplicateSKU       = errors.New("sku already exists")
	ErrEmailRegistered    = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvitationPending  = errors.New("a pending invitation already exists for this email")
	ErrInvalidInvitation  = errors.New("invitation is invalid or expired")
	ErrInvalidCode        = errors.New("verification code is invalid or expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvoiceVoided      = errors.New("invoice is voided")
	ErrNoCustomerEmail    = errors.New("invoice has no customer email")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrPaymentGateway     = errors.New("payment gateway request failed")
)

// ValidationError is a rejected input the caller can fix.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
