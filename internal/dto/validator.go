package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var minecraftName = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("mcname", func(fl validator.FieldLevel) bool {
		return minecraftName.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}
