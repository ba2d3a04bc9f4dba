// Package validator wraps go-playground/validator behind a small injectable
// type shared by all handlers.
package validator

import "github.com/go-playground/validator/v10"

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

// Struct validates s against its field tags. The returned error is a
// validator.ValidationErrors when any tag fails, which the response layer
// flattens into a field:tag map.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}
