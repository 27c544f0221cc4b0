// Package validation wraps go-playground/validator and reports failures as
// field-level details keyed by the request's JSON names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gymflow/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
)

// InvalidRequestMessage is the summary used for every validation failure.
const InvalidRequestMessage = "Invalid request"

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Struct validates s and returns an apperror validation error on failure.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperror.Validation(InvalidRequestMessage, err.Error())
	}

	details := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return apperror.Validation(InvalidRequestMessage, details)
}

// Malformed reports a request body or query that could not be decoded.
func Malformed(err error) error {
	return apperror.Validation(InvalidRequestMessage, []FieldError{{
		Field:   "body",
		Rule:    "decode",
		Message: err.Error(),
	}})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
