package services

import (
	"errors"
	"form-builder/apperr"
	"strings"

	"github.com/go-playground/validator"
)

var validate = validator.New()

// validateStruct runs the struct tags and turns the first failure into
// a readable Validation error.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("%s", err.Error())
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", field)
	case "max":
		return apperr.Validation("%s must be at most %s characters", field, fe.Param())
	case "email":
		return apperr.Validation("%s must be a valid email address", field)
	default:
		return apperr.Validation("%s is invalid (%s)", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
