// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// Default file names, relative to the devcontainer directory.
const (
	DefaultEnvFile      = ".env"
	DefaultTemplate     = "devcontainer.template.json"
	DefaultOutput       = "devcontainer.json"
	DefaultSettingsFile = "devcontainer-init.yaml"
)

// DefaultRequiredKeys are the top-level keys a generated devcontainer.json
// is expected to carry.
var DefaultRequiredKeys = []string{"name", "dockerComposeFile", "service", "workspaceFolder"}

// Config is the effective generator configuration.
type Config struct {
	Dir           string
	EnvFile       string
	Template      string
	Output        string
	StrictSchema  bool
	RequiredKeys  []string
	MetricsFile   string
	WatchDebounce time.Duration
	LogLevel      string
	LogFormat     string
	Variables     []VariableSpec

	// SettingsPath is the settings file that was loaded, if any.
	SettingsPath string
}

// FileConfig represents the YAML settings file structure.
type FileConfig struct {
	EnvFile       string         `yaml:"envFile,omitempty"`
	Template      string         `yaml:"template,omitempty"`
	Output        string         `yaml:"output,omitempty"`
	StrictSchema  *bool          `yaml:"strictSchema,omitempty"`
	RequiredKeys  []string       `yaml:"requiredKeys,omitempty"`
	MetricsFile   string         `yaml:"metricsFile,omitempty"`
	WatchDebounce string         `yaml:"watchDebounce,omitempty"` // e.g. "200ms"
	LogLevel      string         `yaml:"logLevel,omitempty"`
	LogFormat     string         `yaml:"logFormat,omitempty"`
	Variables     []VariableSpec `yaml:"variables,omitempty"`
}

// VariableSpec declares a project-specific template variable.
type VariableSpec struct {
	Name        string `yaml:"name"`
	Default     string `yaml:"default"`
	Kind        string `yaml:"kind,omitempty"`    // text, identifier or port
	Pattern     string `yaml:"pattern,omitempty"` // Go regexp the value must match
	Description string `yaml:"description,omitempty"`
}
