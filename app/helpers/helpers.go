package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Rakhulsr/fashion-boutique/app/models"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

type contextKey string

const (
	ContextKeyUserID    contextKey = "userID"
	ContextKeyUser      contextKey = "userObject"
	ContextKeyRequestID contextKey = "requestID"
	ContextKeyAuthVia   contextKey = "authVia"
)

const maxJSONBodyBytes = 1 << 20

func WithUser(ctx context.Context, user *models.User, via string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, user.ID)
	ctx = context.WithValue(ctx, ContextKeyUser, user)
	return context.WithValue(ctx, ContextKeyAuthVia, via)
}

func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(ContextKeyUser).(*models.User)
	return user
}

func CurrentUserID(r *http.Request) string {
	userID, _ := r.Context().Value(ContextKeyUserID).(string)
	return userID
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// NewValidator reports field errors under their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		label := capitalizeFirstLetter(field)
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", label)
		case "email":
			errorMessages[field] = fmt.Sprintf("%s must be a valid email address.", label)
		case "numeric":
			errorMessages[field] = fmt.Sprintf("%s must be a number.", label)
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s.", label, err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s.", label, err.Param())
		case "len":
			errorMessages[field] = fmt.Sprintf("%s must be exactly %s characters.", label, err.Param())
		case "oneof":
			errorMessages[field] = fmt.Sprintf("%s must be one of: %s.", label, err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("%s failed the %s check.", label, err.Tag())
		}
	}
	return errorMessages
}

func capitalizeFirstLetter(s string) string {
	if len(s) == 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

// DecodeJSONBody reads a single JSON object from the request into dst.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return services.NewValidationError("", "request body must not be empty")
		case errors.As(err, &syntaxErr):
			return services.NewValidationError("", "malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return services.NewValidationError(typeErr.Field, "has the wrong type")
		case errors.As(err, &maxErr):
			return services.NewValidationError("", "request body must not exceed %d bytes", maxErr.Limit)
		default:
			return services.NewValidationError("", "invalid JSON body: %v", err)
		}
	}
	if dec.More() {
		return services.NewValidationError("", "request body must contain a single JSON object")
	}
	return nil
}

// ParsePagination reads ?page= and ?per_page=; bad values fall back to the defaults.
func ParsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return page, perPage
}

func GenerateSlug(s string) string {
	return slug.Make(s)
}
