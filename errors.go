package deepget

import "errors"

// Common errors used throughout the deepget package
var (
	// ErrConfigValidation is returned when configuration validation fails
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrConfigParse indicates the configuration file is not valid YAML or has unknown fields.
	ErrConfigParse = errors.New("failed to parse config file")
	// ErrEnvFile indicates a .env file exists but could not be loaded.
	ErrEnvFile = errors.New("failed to load environment files")
)
