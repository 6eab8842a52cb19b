package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/HannahHaeusler/labor/internal/domain/model"
)

// Validator checks the declarative constraints on orders and their line items.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a validator reporting JSON property paths.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{validate: v}
}

// Validate collects all violations of order in one pass. The result is nil for a valid
// order and never contains duplicates.
func (v *Validator) Validate(order model.Order) []model.Violation {
	err := v.validate.Struct(order)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []model.Violation{{Message: err.Error()}}
	}

	seen := make(map[model.Violation]struct{}, len(fieldErrs))
	violations := make([]model.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violation := model.Violation{Property: propertyPath(fe.Namespace()), Message: message(fe)}
		if _, dup := seen[violation]; dup {
			continue
		}
		seen[violation] = struct{}{}
		violations = append(violations, violation)
	}
	return violations
}

// propertyPath strips the root struct name: Order.lineItems[0].quantity -> lineItems[0].quantity.
func propertyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed constraint %q", fe.Tag())
	}
}
