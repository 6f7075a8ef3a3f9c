// Package validation wraps go-playground/validator with the tag naming and
// message rendering shared by the admin and download request forms.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TagBasicEmail is the validation tag for the local@domain.tld shape check.
const TagBasicEmail = "basic_email"

var basicEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// New returns a validator that reports fields by their `form` tag and knows
// the basic_email rule.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0] //nolint:mnd
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	_ = v.RegisterValidation(TagBasicEmail, func(fl validator.FieldLevel) bool {
		return IsBasicEmail(fl.Field().String())
	})

	return v
}

// IsBasicEmail reports whether s looks like local@domain.tld.
func IsBasicEmail(s string) bool {
	return basicEmail.MatchString(s)
}

// Fields converts a validator error into field name -> message pairs.
// Errors that are not validation errors are reported under the empty key.
func Fields(err error, labels map[string]string) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[""] = err.Error()
		return out
	}

	for _, fe := range verrs {
		field := fe.Field()
		if _, exists := out[field]; exists {
			continue
		}

		out[field] = message(fe, label(field, labels))
	}

	return out
}

func label(field string, labels map[string]string) string {
	if l, ok := labels[field]; ok {
		return l
	}

	return field
}

func message(fe validator.FieldError, lbl string) string {
	switch fe.Tag() {
	case "required":
		return lbl + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", lbl, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", lbl, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", lbl, fe.Param())
	case TagBasicEmail, "email":
		return "Please enter a valid email address"
	default:
		return lbl + " is invalid"
	}
}
