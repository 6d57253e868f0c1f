package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
// The command to wrap is NOT configuration: it always comes from the argument
// list, so every argument after the program name forwards verbatim.
type AppConfig struct {
	// CacheSize bounds the suppression-decision cache.
	CacheSize uint `koanf:"cache_size" validate:"required,gte=1"`

	// DisableCache disables suppression-decision caching when set to true.
	DisableCache bool `koanf:"disable_cache"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls stderr log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// NoBuiltinRules drops the built-in Cocoa suppression rules when true,
	// leaving only the rules given in Rules.
	NoBuiltinRules bool `koanf:"no_builtin_rules"`

	// Rules is a list of extra suppression regexes, comma-separated in the
	// environment. Patterns containing commas cannot be passed this way.
	Rules []string `koanf:"rules" validate:"omitempty,dive,regexp"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings
// for the leak filter.
var DEFAULT_APP_CONFIG = AppConfig{
	CacheSize:      256,
	DisableCache:   false,
	Env:            "prod",
	LogLevel:       "info",
	NoBuiltinRules: false,
	Rules:          nil,
}

// validRegexp validates that the field value compiles as a Go regular
// expression, so a malformed suppression pattern fails at startup instead of
// during the filtering pass.
func validRegexp(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

// envLoader loads environment variables with the prefix "LEAKS_".
// Keys are lowercased with the prefix removed; values are trimmed, and
// comma-separated values become lists. It can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "LEAKS_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "LEAKS_"))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, ",") {
				parts := strings.Split(value, ",")
				for i := range parts {
					parts[i] = strings.TrimSpace(parts[i])
				}
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf
// instance using the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "regexp" validation with the
// provided validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("regexp", validRegexp)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
