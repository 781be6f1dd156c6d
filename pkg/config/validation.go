package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/maxpathlen/pkg/probe"
)

// validate is the singleton validator instance
var validate *validator.Validate

// ErrInvalidValue marks a value that parsed but is not allowed for its key.
var ErrInvalidValue = errors.New("value not allowed")

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	// Run struct tag validation
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// Custom validation rules that can't be expressed in tags
	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The first candidate must leave room for a file name in the chain
	if cfg.InitialFilePathLength < cfg.MaxFolderLength+3 {
		return fmt.Errorf("InitialFilePathLength: %d must be at least MaxFolderLength+3 (%d)",
			cfg.InitialFilePathLength, cfg.MaxFolderLength+3)
	}

	if cfg.InitialFilePathLength > probe.HardCeiling {
		return fmt.Errorf("InitialFilePathLength: %d exceeds the hard ceiling %d",
			cfg.InitialFilePathLength, probe.HardCeiling)
	}

	for i, root := range cfg.Roots {
		if root == "" {
			return fmt.Errorf("Roots[%d]: empty directory", i)
		}
	}

	return nil
}

// fallBackToDefaults puts every key that fails validation back to its
// default and records a ConfigurationReadError for it. Each key is judged on
// its own, so one bad value leaves the others in effect.
func fallBackToDefaults(cfg *Config) {
	defaults := GetDefaultConfig()

	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(cfg); errors.As(err, &fieldErrs) {
		for _, e := range fieldErrs {
			key := resetField(cfg, defaults, e.StructNamespace())
			cfg.ReadErrors = append(cfg.ReadErrors, &ConfigurationReadError{
				Key:   key,
				Value: e.Value(),
				Err:   fmt.Errorf("%w: %s", ErrInvalidValue, constraint(e)),
			})
		}
	}

	// The first candidate must leave room for a file name below the chain.
	// The initial length gives way first, then the folder length.
	if cfg.InitialFilePathLength < cfg.MaxFolderLength+3 {
		cfg.ReadErrors = append(cfg.ReadErrors, &ConfigurationReadError{
			Key:   "InitialFilePathLength",
			Value: cfg.InitialFilePathLength,
			Err:   fmt.Errorf("%w: must be at least MaxFolderLength+3 (%d)", ErrInvalidValue, cfg.MaxFolderLength+3),
		})
		cfg.InitialFilePathLength = defaults.InitialFilePathLength
	}
	if cfg.InitialFilePathLength < cfg.MaxFolderLength+3 {
		cfg.ReadErrors = append(cfg.ReadErrors, &ConfigurationReadError{
			Key:   "MaxFolderLength",
			Value: cfg.MaxFolderLength,
			Err:   fmt.Errorf("%w: must be at most InitialFilePathLength-3 (%d)", ErrInvalidValue, cfg.InitialFilePathLength-3),
		})
		cfg.MaxFolderLength = defaults.MaxFolderLength
	}
}

// resetField copies the field at namespace (as reported by the validator,
// e.g. "Config.Logging.Level") from defaults into cfg and returns its
// configuration key, e.g. "logging.level".
func resetField(cfg, defaults *Config, namespace string) string {
	dst := reflect.ValueOf(cfg).Elem()
	src := reflect.ValueOf(defaults).Elem()

	var keys []string
	for _, name := range strings.Split(namespace, ".")[1:] {
		field, ok := dst.Type().FieldByName(name)
		if !ok {
			return namespace
		}
		key, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		keys = append(keys, key)
		dst, src = dst.FieldByIndex(field.Index), src.FieldByIndex(field.Index)
	}

	dst.Set(src)
	return strings.Join(keys, ".")
}

// constraint renders a failed validator tag, e.g. "lte=255".
func constraint(e validator.FieldError) string {
	if e.Param() == "" {
		return e.Tag()
	}
	return e.Tag() + "=" + e.Param()
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		// Return the first validation error with context
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
