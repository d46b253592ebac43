package handler

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ashveil/progression-engine/internal/domain"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

var (
	validateOnce sync.Once
	validate     *Validator
)

// GetValidator returns the shared validator, building it on first use
func GetValidator() *Validator {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("source", func(fl validator.FieldLevel) bool {
			return domain.KnownSource(domain.Source(fl.Field().String()))
		})
		validate = &Validator{validate: v}
	})
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

var tagMessages = map[string]string{
	"required": "This field is required",
	"source":   "Invalid award source",
}

// FormatValidationError formats validation errors into a user-friendly map
// without leaking internal struct names
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return map[string]string{"error": "Invalid request format"}
	}

	errs := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := strings.ToLower(fe.Field())
		if msg, ok := tagMessages[fe.Tag()]; ok {
			errs[field] = msg
			continue
		}
		switch fe.Tag() {
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s characters", fe.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", fe.Param())
		default:
			errs[field] = "Invalid value"
		}
	}
	return errs
}
