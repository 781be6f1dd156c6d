package config

import (
	"strings"
	"time"

	"github.com/marmos91/maxpathlen/pkg/policy"
)

// Probe defaults.
const (
	DefaultMaxFolderLength       = 248
	DefaultMaxDirLength          = 32
	DefaultInitialFilePathLength = 260
	DefaultTimeout               = 30 * time.Second
	DefaultParallelism           = 1
)

// DefaultExcludedTypes are never probed unless the configuration says
// otherwise. Optical media is read-only.
var DefaultExcludedTypes = []string{"CDFS"}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero numbers and empty strings are replaced with defaults
//   - Explicit values are preserved
//   - Lists and RegistryPath keep an explicit empty value
func ApplyDefaults(cfg *Config) {
	applyProbeDefaults(cfg)
	applyLoggingDefaults(&cfg.Logging)
	applyReportDefaults(&cfg.Report)
}

// applyProbeDefaults sets the probe parameters.
func applyProbeDefaults(cfg *Config) {
	if cfg.MaxFolderLength == 0 {
		cfg.MaxFolderLength = DefaultMaxFolderLength
	}
	if cfg.MaxDirLength == 0 {
		cfg.MaxDirLength = DefaultMaxDirLength
	}
	if cfg.InitialFilePathLength == 0 {
		cfg.InitialFilePathLength = DefaultInitialFilePathLength
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if cfg.ExcludedTypes == nil {
		cfg.ExcludedTypes = append([]string(nil), DefaultExcludedTypes...)
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyReportDefaults sets report defaults.
func applyReportDefaults(cfg *ReportConfig) {
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		RegistryPath: policy.DefaultLocator,
	}

	ApplyDefaults(cfg)
	return cfg
}
