// Package validator checks offers against their struct tags before they are
// persisted.
package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator holds one tag-validation engine; construct once and share.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct reports the tag violations on s, if any.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
