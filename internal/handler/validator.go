package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dholimara/homestay-api/internal/apperr"
)

// Validator plugs go-playground/validator into echo. Field names in errors
// are the JSON names the client sent.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return translateValidationErrors(verrs)
	}
	return apperr.BadRequest(err.Error())
}

func translateValidationErrors(errs validator.ValidationErrors) *apperr.Error {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "This field is required."
		case "min", "gte":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
			} else {
				msg = fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
			}
		case "max", "lte":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
			} else {
				msg = fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
			}
		case "email":
			msg = "Enter a valid email address."
		case "url":
			msg = "Enter a valid URL."
		case "oneof":
			msg = fmt.Sprintf("Must be one of: %s.", fe.Param())
		default:
			msg = fmt.Sprintf("Failed on the %q rule.", fe.Tag())
		}
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = msg
		}
	}
	return apperr.Validation("Invalid input", fields)
}
