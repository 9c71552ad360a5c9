package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"acta/internal/common"
	"acta/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps go-playground/validator with JSON field names and the
// domain rules vatcode, businesstype and role. It satisfies echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	// Decimals are compared as floats so gt/gte work on money fields.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("vatcode", func(fl validator.FieldLevel) bool {
		return models.VATCode(fl.Field().Int()).Valid()
	})
	_ = v.RegisterValidation("businesstype", func(fl validator.FieldLevel) bool {
		return models.BusinessType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

// Validate returns a validation AppError whose details map each failing
// field to a message.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return common.NewValidationError("", err.Error())
	}
	return &common.AppError{
		Kind:    common.KindValidation,
		Message: "Validation failed",
		Details: formatValidationErrors(validationErrs),
	}
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", field)
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
		case "vatcode":
			message = fmt.Sprintf("%s must be one of 0, 8, 18", field)
		case "businesstype":
			message = fmt.Sprintf("%s must be a known business type", field)
		case "role":
			message = fmt.Sprintf("%s must be one of super_admin, admin, user", field)
		default:
			message = fmt.Sprintf("%s failed validation for %s", field, err.Tag())
		}
		details[namespaceKey(err)] = message
	}
	return details
}

// namespaceKey drops the struct name so nested fields read items[0].quantity.
func namespaceKey(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
