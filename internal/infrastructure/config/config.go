// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for osl configuration.
	DefaultConfigDir = ".osl"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultStoreFile is the default document store file name.
	DefaultStoreFile = "documents.db"
)

var validate = validator.New()

// Config holds the settings of the osl tool (read-only after load).
type Config struct {
	Ontology OntologyConfig `yaml:"ontology"`
	Store    StoreConfig    `yaml:"store,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Codec    CodecConfig    `yaml:"codec,omitempty"`
}

// OntologyConfig locates the schema to compile.
type OntologyConfig struct {
	// Path is a schema file or a schema directory, relative to the base path
	// unless absolute.
	Path string `yaml:"path" validate:"required"`
}

// StoreConfig holds configuration for the SQLite document store.
type StoreConfig struct {
	// Path is the SQLite file. Empty means .osl/documents.db.
	Path string `yaml:"path,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" validate:"oneof=debug info warn error"`
	Format string `yaml:"format,omitempty" validate:"oneof=console json"`
}

// CodecConfig holds codec defaults.
type CodecConfig struct {
	// Dialect is the default output dialect.
	Dialect string `yaml:"dialect,omitempty" validate:"oneof=native legacy"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Ontology: OntologyConfig{Path: "ontology"},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Codec: CodecConfig{Dialect: "native"},
	}
}

// Load loads configuration from the .osl directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'osl init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OSL_ONTOLOGY_PATH"); v != "" {
		c.Ontology.Path = v
	}
	if v := os.Getenv("OSL_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("OSL_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks the struct tags of the configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// OntologyPath resolves the ontology path against basePath.
func (c *Config) OntologyPath(basePath string) string {
	return resolve(basePath, c.Ontology.Path)
}

// StorePath resolves the document store path against basePath.
func (c *Config) StorePath(basePath string) string {
	if c.Store.Path == "" {
		return filepath.Join(basePath, DefaultConfigDir, DefaultStoreFile)
	}
	return resolve(basePath, c.Store.Path)
}

func resolve(basePath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// ConfigDir returns the path to the .osl config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}
