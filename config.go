package deepget

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = "deepget.yaml"

// Config represents the deepget configuration
type Config struct {
	Input    string            `yaml:"input"`     // Document used as the root value by eval
	LogLevel string            `yaml:"log_level"` // trace, debug, info, warn, error or off
	Vars     map[string]string `yaml:"vars"`      // Captured variable name -> CEL expression
	Paths    []string          `yaml:"paths"`     // Paths validated by check
	Output   OutputConfig      `yaml:"output"`
}

// OutputConfig represents result rendering settings
type OutputConfig struct {
	Format string `yaml:"format"`
	Color  *bool  `yaml:"color"` // Pointer to distinguish between unset and false. If nil, color follows the terminal
}

// Output formats
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTable = "table"
)

// ColorEnabled returns the explicit color setting, or fallback when unset
func (o OutputConfig) ColorEnabled(fallback bool) bool {
	if o.Color == nil {
		return fallback
	}

	return *o.Color
}

// Level returns the configured log level for hclog
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvFile, err)
	}

	// Return default configuration if file doesn't exist
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses configuration YAML, validates it and applies defaults.
// Environment variables are expanded after validation.
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	// Parse YAML with strict mode to detect unknown fields
	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.LogLevel != "" && hclog.LevelFromString(config.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("%w: invalid log_level '%s': must be one of trace, debug, info, warn, error, off", ErrConfigValidation, config.LogLevel)
	}

	if config.Output.Format != "" {
		validFormats := map[string]bool{
			FormatYAML:  true,
			FormatJSON:  true,
			FormatTable: true,
		}
		if !validFormats[config.Output.Format] {
			return fmt.Errorf("%w: output.format '%s' is invalid: must be one of yaml, json, table", ErrConfigValidation, config.Output.Format)
		}
	}

	for name, expr := range config.Vars {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("%w: vars: '%s' is not a valid variable name", ErrConfigValidation, name)
		}

		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("%w: vars.%s: expression is required", ErrConfigValidation, name)
		}
	}

	for i, path := range config.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%w: paths[%d] is empty", ErrConfigValidation, i)
		}
	}

	return nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Vars:     make(map[string]string),
		Paths:    []string{},
		Output: OutputConfig{
			Format: FormatYAML,
		},
	}
}

// applyDefaults fills missing values with defaults
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.Vars == nil {
		config.Vars = defaults.Vars
	}

	if config.Paths == nil {
		config.Paths = defaults.Paths
	}

	if config.Output.Format == "" {
		config.Output.Format = defaults.Output.Format
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in file names and CEL
// expressions. Paths are left alone: $name there reads a captured variable.
func expandConfigEnvVars(config *Config) {
	config.Input = expandEnvVars(config.Input)

	for name, expr := range config.Vars {
		config.Vars[name] = expandEnvVars(expr)
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
