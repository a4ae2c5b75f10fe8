// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
Config is resolved once at boot, in this order (later wins):

  1. Defaults(), so a bare checkout runs with a JSON file store on :8080.
  2. `<root>/conf/.env`, if present, pushed into the process environment.
  3. `<root>/conf/global.yaml`, if present.
  4. INTAKE_* environment variables.  A double underscore separates the
     section from the key: INTAKE_STORE__DRIVER sets store.driver.

The merged tree is unmarshalled and validated with the rules in
validator.go.  cmd/web and intakectl share this path; intakectl only reads
the gateway section.

Logging
-------
  • Debug: resolved root, YAML read.
  • Error: every failure before the config is returned.
  • Info: one "config loaded" line with the settings that shape boot.

All of it goes through zap.S(), which is a no-op until the file logger
replaces the globals, so intakectl stays quiet.

Notes
-----
  • rootDir() walks up from the working directory looking for
    conf/global.yaml, so `go test ./...` and `go run ./cmd/web` find it
    from any package.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "INTAKE_"

/*──────────────────────────── defaults ────────────────────────────────────*/

// Defaults returns the values used when neither YAML nor env set a key.
func Defaults() Config {
	return Config{
		HTTP:    HTTP{ListenAddr: ":8080"},
		Log:     Log{Level: "info"},
		Store:   Store{Driver: "file", Path: "data/patients.json"},
		Gateway: Gateway{BaseURL: "http://localhost:8080/api", Timeout: 10 * time.Second},
		Intake:  Intake{SessionCapacity: 1000, SessionIdle: 30 * time.Minute},
	}
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves INTAKE_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root, then behaves like LoadFrom.
func Load() (*Config, error) { return LoadFrom(rootDir()) }

// LoadFrom reads .env, YAML, and env overrides, then validates.
// A missing conf/global.yaml is not an error; defaults and env apply.
func LoadFrom(root string) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	}

	// Env overrides: INTAKE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"store", cfg.Store.Driver,
		"gateway", cfg.Gateway.BaseURL,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}
