// Package validation checks console form bodies before anything is sent to
// the REST API.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"oyna-console/pkg/apierror"
)

const maxBodyBytes = 1 << 20

// Validator wraps a configured validator.Validate. Field names in errors are
// the JSON names of the struct fields.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates dst and returns a VALIDATION_ERROR listing every bad field,
// or nil.
func (v *Validator) Struct(dst any) error {
	err := v.v.Struct(dst)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apierror.ValidationError("Form verileri geçersiz.")
	}

	fields := make([]apierror.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, apierror.FieldError{
			Field:   fe.Field(),
			Message: messageForTag(fe.Tag(), fe.Param()),
		})
	}
	return apierror.ValidationError("Form verileri geçersiz.", fields...)
}

// DecodeJSON reads a JSON body into dst and validates it. Unknown fields are
// rejected so typos do not silently reach the API.
func (v *Validator) DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apierror.BadRequest("request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierror.BadRequest("request body is required")
		}
		return apierror.BadRequest(fmt.Sprintf("invalid JSON: %v", err))
	}
	return v.Struct(dst)
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "Bu alan zorunludur."
	case "email":
		return "Geçerli bir e-posta giriniz."
	case "min":
		return "En az " + param + " karakter olmalıdır."
	case "max":
		return "En fazla " + param + " karakter olmalıdır."
	case "oneof":
		return "Şunlardan biri olmalıdır: " + param + "."
	case "gt", "gte":
		return "Değer " + param + " veya daha büyük olmalıdır."
	case "lte":
		return "Değer en fazla " + param + " olmalıdır."
	case "url", "http_url":
		return "Geçerli bir bağlantı giriniz."
	case "gtfield":
		return param + " alanından sonra olmalıdır."
	case "len":
		return param + " karakter olmalıdır."
	case "numeric", "number":
		return "Yalnızca rakam giriniz."
	default:
		return "Geçersiz değer."
	}
}
