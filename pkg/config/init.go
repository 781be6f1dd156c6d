package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# maxpathlen Configuration File
#
# Top-level keys parameterize the probe. Every key can also be set through
# an environment variable, e.g. MAXPATHLEN_KEEPFILECREATED=true or
# MAXPATHLEN_LOGGING_LEVEL=DEBUG.

`

// InitConfig writes the default configuration to the default config path.
//
// Parameters:
//   - force: Overwrite an existing file
//
// Returns the path written.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := WriteDefaultConfig(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// WriteDefaultConfig writes the default configuration as YAML to path,
// creating parent directories.
func WriteDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(GetDefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
