// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Custom rules
// ------------
//   • vault_ref – "<mount>/<path>#<key>", e.g. "secret/intake/db#password".
//   • struct level – a DSN template paired with a password secret must
//     contain exactly one %s verb.

package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	if err := val.RegisterValidation("vault_ref", func(fl validator.FieldLevel) bool {
		path, key, ok := strings.Cut(fl.Field().String(), "#")
		return ok && strings.Contains(path, "/") && key != ""
	}); err != nil {
		panic(fmt.Sprintf("config: register vault_ref: %v", err))
	}
	val.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(Store)
		if s.PasswordSecret != "" && strings.Count(s.DSN, "%s") != 1 {
			sl.ReportError(s.DSN, "DSN", "dsn", "dsn_template", "")
		}
	}, Store{})
	return val
}

//
// public API
//

// validateStruct returns the validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
