package helpers

import (
	"errors"
	"net/http"

	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/Rakhulsr/fashion-boutique/app/utils/logger"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type Payload map[string]interface{}

func RespondSuccess(rnd *render.Render, w http.ResponseWriter, status int, message string, payload Payload) {
	body := Payload{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	_ = rnd.JSON(w, status, body)
}

func RespondError(rnd *render.Render, w http.ResponseWriter, status int, message string, payload Payload) {
	body := Payload{"success": false, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	_ = rnd.JSON(w, status, body)
}

// StatusFor maps a service error to the HTTP status it is reported with.
func StatusFor(err error) int {
	var vErr *services.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrCategoryInUse),
		errors.Is(err, services.ErrAttributeInUse),
		errors.Is(err, services.ErrDuplicateName),
		errors.Is(err, services.ErrDuplicateSKU),
		errors.Is(err, services.ErrEmailRegistered),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrInvitationPending),
		errors.Is(err, services.ErrInvoiceVoided):
		return http.StatusConflict
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInsufficientCash),
		errors.Is(err, services.ErrInvalidInvitation),
		errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrNoCustomerEmail),
		errors.Is(err, services.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrEmailDelivery), errors.Is(err, services.ErrPaymentGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as a JSON failure. Unexpected errors are logged and
// hidden behind a generic message.
func WriteError(rnd *render.Render, w http.ResponseWriter, r *http.Request, fallback *zap.Logger, err error) {
	log := logger.FromContext(r.Context(), fallback)
	status := StatusFor(err)

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		RespondError(rnd, w, status, "validation failed", Payload{"errors": FormatValidationErrors(fieldErrs)})
		return
	}

	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		payload := Payload{}
		if vErr.Field != "" {
			payload["errors"] = map[string]string{vErr.Field: vErr.Message}
		}
		RespondError(rnd, w, status, vErr.Error(), payload)
		return
	}

	switch status {
	case http.StatusInternalServerError:
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		var payload Payload
		if id := RequestID(r.Context()); id != "" {
			payload = Payload{"request_id": id}
		}
		RespondError(rnd, w, status, "internal server error", payload)
	case http.StatusBadGateway:
		log.Warn("upstream service failed", zap.String("path", r.URL.Path), zap.Error(err))
		RespondError(rnd, w, status, err.Error(), nil)
	default:
		RespondError(rnd, w, status, err.Error(), nil)
	}
}

// DecodeAndValidate reads and validates a JSON body. On failure it writes the
// error response and returns false.
func DecodeAndValidate(rnd *render.Render, v *validator.Validate, log *zap.Logger, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := DecodeJSONBody(w, r, dst); err != nil {
		WriteError(rnd, w, r, log, err)
		return false
	}
	if err := v.Struct(dst); err != nil {
		WriteError(rnd, w, r, log, err)
		return false
	}
	return true
}
