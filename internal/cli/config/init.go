package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders cfg as a dbmitra.yaml document.
func MarshalYAML(cfg *Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	header := "# dbmitra configuration\n# Environment variables (DBMITRA_*) and flags override these values.\n"
	return append([]byte(header), body...), nil
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := MarshalYAML(Default())
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config file is not secret
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
