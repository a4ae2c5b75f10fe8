// internal/patient/validate.go
//
// Thin wrapper around go-playground/validator for incoming payloads.
//
// Context
// -------
// The patients component calls Validate on every decoded Intake before it is
// stored.  Well-behaved clients have already run the form validators, so a
// failure here means a hand-crafted or stale client; the error text names
// each offending field by its JSON key.
//
// Notes
// -----
//   • Custom rules reuse rules.go so both sides agree.
//   • The validator instance is a package-level singleton, as in config.

package patient

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()

	// Report JSON names rather than Go field names.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := val.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("patient: register %s: %v", tag, err))
		}
	}
	must("intake_phone", func(fl validator.FieldLevel) bool {
		return PhoneOK(fl.Field().String())
	})
	must("intake_email", func(fl validator.FieldLevel) bool {
		return EmailOK(fl.Field().String())
	})
	must("issued_year", func(fl validator.FieldLevel) bool {
		return IssuedYearOK(fl.Field().String())
	})
	return val
}

//
// public API
//

// Validate checks in against the struct tags on Intake.  The returned error
// lists every failing field, e.g. "age failed min; email failed intake_email".
func Validate(in *Intake) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return errors.New(strings.Join(parts, "; "))
}
