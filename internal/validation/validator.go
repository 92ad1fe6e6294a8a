package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validCareers = map[string]bool{
	"Web Development":    true,
	"Mobile Development": true,
	"UI/UX":              true,
	"Data Science":       true,
	"Business":           true,
	"Other":              true,
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// career values contain spaces, which rules out the builtin oneof tag.
	v.RegisterValidation("career", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return validCareers[value]
	})

	zipRegex := regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
	v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return zipRegex.MatchString(value)
	})

	return &Validator{v: v}
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

// Var checks a single value against a tag, for inputs that arrive outside
// a request body, such as URL parameters.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.v.Var(field, tag)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok {
		return ve
	}
	return nil
}
