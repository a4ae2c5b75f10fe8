// internal/config/model.go
//
// Typed configuration model for the intake service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `INTAKE_`-prefixed environment overrides – highest precedence.
//
// Secrets never live here.  `Store.PasswordSecret` names a Vault KV-v2
// location; ResolveDSN fetches the password at boot and splices it into
// the DSN template.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr  string   `koanf:"listen_addr"  validate:"required,hostname_port"`
	ForceHTTPS  bool     `koanf:"force_https"`
	CORSOrigins []string `koanf:"cors_origins" validate:"dive,required"`
}

//
// Log section
//

// Log controls the zap level.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Store section
//

// Store selects the persistence back-end.
//
// For driver "file", Path is the JSON document (relative paths resolve
// against Paths.Root).  For driver "mysql", DSN is a template; when
// PasswordSecret is set the DSN must contain exactly one %s, which
// receives the password read from Vault.
type Store struct {
	Driver         string `koanf:"driver"          validate:"required,oneof=file mysql"`
	Path           string `koanf:"path"            validate:"required_if=Driver file"`
	DSN            string `koanf:"dsn"             validate:"required_if=Driver mysql"`
	PasswordSecret string `koanf:"password_secret" validate:"omitempty,vault_ref"`
}

//
// Gateway section
//

// Gateway points the intake page and intakectl at the patients API.
type Gateway struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"  validate:"gte=0"`
}

//
// Intake section
//

// Intake tunes the server-rendered intake page.
type Intake struct {
	SessionCapacity int           `koanf:"session_capacity" validate:"required,min=1"`
	SessionIdle     time.Duration `koanf:"session_idle"     validate:"gte=0"`
	GeoIPDB         string        `koanf:"geoip_db"`
	CSRFKey         string        `koanf:"csrf_key"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // INTAKE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the aggregate returned by Load().  Callers treat it as
// read-only after boot.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	Log     Log     `koanf:"log"`
	Store   Store   `koanf:"store"`
	Gateway Gateway `koanf:"gateway"`
	Intake  Intake  `koanf:"intake"`
	Paths   Paths   `koanf:"-"`
}

//
// helpers
//

// Abs resolves p against Paths.Root unless it is already absolute.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

// SecretGetter reads one key from a KV secret.  *vault.Client satisfies it.
type SecretGetter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// ResolveDSN returns the DSN ready for the driver.  Without a
// PasswordSecret the template is returned as is.
func (s Store) ResolveDSN(ctx context.Context, sg SecretGetter) (string, error) {
	if s.PasswordSecret == "" {
		return s.DSN, nil
	}
	if sg == nil {
		return "", fmt.Errorf("store.password_secret set but no secret source configured")
	}
	path, key, _ := strings.Cut(s.PasswordSecret, "#")
	pw, err := sg.GetKV(ctx, path, key, 0)
	if err != nil {
		return "", fmt.Errorf("resolve store password: %w", err)
	}
	return fmt.Sprintf(s.DSN, pw), nil
}
