// Package config loads and validates the cache's configuration. The
// cache engine recognizes one required option, cacheDirectory.
// LockTimeout is an additive, off-by-default layer consumed only by
// callers that opt into putting a context deadline on their cache
// calls; it never changes the default blocking, uncancellable lock
// contract.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the cache's configuration, loadable from a YAML file with
// environment-variable overrides.
type Config struct {
	// CacheDirectory is the cache root. Must be writable and must
	// live on a single filesystem, since atomic publish depends on
	// same-filesystem rename.
	CacheDirectory string `yaml:"cacheDirectory" validate:"required"`

	// LockTimeout, when non-zero, is the deadline "geniecache get"
	// puts on the whole Get call (probe, lock wait, download and
	// copy). Within the lock wait it interrupts waiting on the OS file
	// lock, not waiting on the in-process mutex. Zero (the default)
	// means block forever.
	LockTimeout time.Duration `yaml:"lockTimeout" validate:"omitempty,min=0"`
}

var validate = validator.New()

// Load reads a YAML config file at path, applies GENIE_CACHE_*
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := ValidateStruct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GENIE_CACHE_DIRECTORY"); v != "" {
		cfg.CacheDirectory = v
	}
	if v := os.Getenv("GENIE_CACHE_LOCK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LockTimeout = d
		}
	}
}

// ValidateStruct validates cfg against its validator tags, returning a
// single human-readable error describing every violated field.
func ValidateStruct(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var messages []string
	for _, e := range validationErrors {
		messages = append(messages, formatFieldError(e))
	}
	return fmt.Errorf("config: %s", strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
