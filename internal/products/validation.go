package products

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field" example:"name"`
	Message string `json:"message" example:"Name is required"`
}

type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Keyed by "<json field>.<tag>".
var violationMessages = map[string]string{
	"name.notblank":   "Name is required",
	"name.max":        "Name cannot exceed 100 characters",
	"description.max": "Description cannot exceed 500 characters",
	"price.required":  "Price is required",
	"price.positive":  "Price must be greater than 0",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals validate as their sign, so no precision is lost to floats.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.Sign()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() > 0
	}); err != nil {
		panic(err)
	}

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	return v
}

// Validate checks every rule on the candidate and reports all violations at
// once. It returns nil or a *ValidationError.
func Validate(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := violationMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		violations = append(violations, Violation{Field: fe.Field(), Message: msg})
	}
	return &ValidationError{Violations: violations}
}
