package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"valora/internal/validation"
)

// RegisterValidators installs the domain tags (cif, esphone) on gin's
// binding validator so request structs can declare them directly.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("cif", func(fl validator.FieldLevel) bool {
		return validation.CIF(fl.Field().String()).Valid
	}); err != nil {
		return err
	}
	return v.RegisterValidation("esphone", func(fl validator.FieldLevel) bool {
		return validation.SpanishPhone(fl.Field().String()).Valid
	})
}
