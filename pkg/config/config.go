package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete maxpathlen configuration.
//
// The top-level keys parameterize the probe itself and keep the names the
// tool has always used in its settings file. Logging and report output live
// in their own sections.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (MAXPATHLEN_*)
//  3. Configuration file (YAML, TOML or JSON)
//  4. Default values (lowest priority)
//
// A key that is present but cannot be parsed, or whose value is out of
// range, keeps its default and is recorded in ReadErrors. So does an
// unreadable configuration file. None of these stop a run.
type Config struct {
	// MaxFolderLength is the folder path limit. The probe's deepest directory
	// is three characters shorter.
	MaxFolderLength int `mapstructure:"MaxFolderLength" yaml:"MaxFolderLength" json:"MaxFolderLength" validate:"gte=4,lte=500"`

	// MaxDirLength bounds each directory name in the probe chain.
	MaxDirLength int `mapstructure:"MaxDirLength" yaml:"MaxDirLength" json:"MaxDirLength" validate:"gte=1,lte=255"`

	// InitialFilePathLength is the first file path length attempted.
	InitialFilePathLength int `mapstructure:"InitialFilePathLength" yaml:"InitialFilePathLength" json:"InitialFilePathLength" validate:"gte=7,lte=500"`

	// RegistryPath locates the extended path policy value. Registry locators
	// look like HKLM\SYSTEM\...\LongPathsEnabled; locators starting with /
	// name a file holding an integer. Empty means no policy.
	RegistryPath string `mapstructure:"RegistryPath" yaml:"RegistryPath" json:"RegistryPath"`

	// ExcludedTypes lists filesystem types never probed (case-insensitive).
	// Accepts a comma-separated string or a list.
	ExcludedTypes []string `mapstructure:"ExcludedTypes" yaml:"ExcludedTypes" json:"ExcludedTypes"`

	// KeepFileCreated leaves the probe directories on disk.
	KeepFileCreated bool `mapstructure:"KeepFileCreated" yaml:"KeepFileCreated" json:"KeepFileCreated"`

	// Timeout bounds every filesystem operation of a probe.
	Timeout time.Duration `mapstructure:"Timeout" yaml:"Timeout" json:"Timeout" validate:"gt=0"`

	// Parallelism is the number of volumes probed at once.
	Parallelism int `mapstructure:"Parallelism" yaml:"Parallelism" json:"Parallelism" validate:"gte=1,lte=64"`

	// MaxOpsPerSecond throttles the filesystem operations of all probes
	// together. Zero means unthrottled.
	MaxOpsPerSecond uint `mapstructure:"MaxOpsPerSecond" yaml:"MaxOpsPerSecond" json:"MaxOpsPerSecond" validate:"lte=100000"`

	// WorkDir is a directory below each volume root to probe in. Empty
	// probes directly under the root.
	WorkDir string `mapstructure:"WorkDir" yaml:"WorkDir" json:"WorkDir"`

	// Seed seeds the random name generator. Zero picks a time-based seed.
	Seed uint64 `mapstructure:"Seed" yaml:"Seed" json:"Seed"`

	// Roots replaces volume discovery with an explicit list of directories.
	Roots []string `mapstructure:"Roots" yaml:"Roots" json:"Roots"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Report controls how results are rendered
	Report ReportConfig `mapstructure:"report" yaml:"report" json:"report"`

	// ReadErrors holds the keys that fell back to their default.
	ReadErrors []error `mapstructure:"-" yaml:"-" json:"-"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" json:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" json:"output" validate:"required"`
}

// ReportConfig controls result output.
type ReportConfig struct {
	// Format selects the reporter
	// Valid values: text, json, yaml
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"required,oneof=text json yaml"`

	// MetricsFile, when set, receives the run's metrics in the Prometheus
	// textfile format.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file,omitempty"`
}

// ConfigurationReadError reports a key whose value could not be used. The
// default is kept in its place.
type ConfigurationReadError struct {
	Key   string
	Value any
	Err   error
}

func (e *ConfigurationReadError) Error() string {
	return fmt.Sprintf("config key %s: cannot use %v, keeping default: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigurationReadError) Unwrap() error {
	return e.Err
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Only when the repaired configuration still fails validation
func Load(configPath string) (*Config, error) {
	return LoadWithOverrides(configPath, nil)
}

// LoadWithOverrides is Load with values that take precedence over every
// other source. Keys use the config file names, e.g. "KeepFileCreated" or
// "logging.level".
func LoadWithOverrides(configPath string, overrides map[string]any) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	cfg := GetDefaultConfig()

	// Read configuration file if it exists. A file that cannot be parsed
	// is skipped; environment and overrides still apply.
	if err := readConfigFile(v); err != nil {
		cfg.ReadErrors = append(cfg.ReadErrors, err)
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	readProbeKeys(v, cfg)
	readSections(v, cfg)

	// Normalize and fill anything left empty
	ApplyDefaults(cfg)

	// Values that parsed but are out of range keep their default too
	fallBackToDefaults(cfg)

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use MAXPATHLEN_ prefix and underscores
	// Example: MAXPATHLEN_LOGGING_LEVEL=DEBUG, MAXPATHLEN_KEEPFILECREATED=true
	v.SetEnvPrefix("MAXPATHLEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/maxpathlen/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// Config file not found is acceptable - use defaults
			return nil
		}
		return fmt.Errorf("failed to read config file %s, using environment and defaults: %w", v.ConfigFileUsed(), err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "maxpathlen")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "maxpathlen")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
