// Package validate provides shared validation functions.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hay-kot/criterio"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// report fields by their JSON name so errors match the request bodies
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

// Struct validates s against its `validate` tags and returns
// criterio.FieldErrors keyed by JSON field name.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var errs criterio.FieldErrorsBuilder
	for _, fe := range verrs {
		errs = errs.Append(fe.Field(), errors.New(message(fe)))
	}
	return errs.ToError()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "url", "http_url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// Email validates a single email address.
func Email(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if err := instance().Var(email, "email"); err != nil {
		return fmt.Errorf("%q is not a valid email address", email)
	}
	return nil
}

// ProductID validates a product identifier is non-empty after trimming whitespace.
func ProductID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("product id is required")
	}
	if strings.ContainsAny(id, "/?#") {
		return fmt.Errorf("product id %q contains reserved characters", id)
	}
	return nil
}
