// Package validation holds the validator instance shared by the control
// panel and the batch manager, with the project's custom tags registered.
package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with every custom tag registered
func New() *validator.Validate {
	v := validator.New()
	RegisterBatchValidators(v)
	return v
}

// RegisterBatchValidators registers the batch-related custom validators
func RegisterBatchValidators(v *validator.Validate) {
	_ = v.RegisterValidation("safepath", ValidateSafePath)
}

// ValidateSafePath rejects paths carrying control characters or NUL bytes.
// Empty values pass; combine with required when a path is mandatory.
func ValidateSafePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return true
	}
	if strings.TrimSpace(path) == "" {
		return false
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
