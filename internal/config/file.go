package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file name inside the XDG config directory.
const DefaultConfigFile = "config.yaml"

// ErrConfigNotFound is returned when an explicitly named config file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// XDGConfigDir returns the config directory, e.g. ~/.config/tablecrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the data directory, e.g. ~/.local/share/tablecrawl.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// FindConfigFile returns configPath when it exists, otherwise the default
// XDG location when that exists, otherwise "".
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}
	def := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(def); err == nil {
		return def
	}
	return ""
}

// mergeFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Source = path
	return nil
}
