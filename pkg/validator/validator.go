package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Validator struct {
	validate *validator.Validate
}

// IsHTTPURL reports whether s is empty or starts with an http:// or https:// scheme.
func IsHTTPURL(s string) bool {
	return s == "" || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		if name == "-" {
			return ""
		}

		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsHTTPURL(fl.Field().String())
	})

	return &Validator{validate: v}
}

func (v *Validator) Validate(i any) ([]ValidationError, bool) {
	if err := v.validate.Struct(i); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []ValidationError{{Code: "INVALID", Message: err.Error()}}, false
		}

		errors := make([]ValidationError, 0, len(validationErrors))
		for _, err := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Code:    strings.ToUpper(err.Tag()),
				Message: message(err),
			})
		}

		return errors, false
	}

	return nil, true
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "httpurl":
		return fmt.Sprintf("%s must start with http:// or https://", err.Field())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}
