// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/log"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultWatchDebounce coalesces editor save bursts in watch mode.
const DefaultWatchDebounce = 200 * time.Millisecond

// Loader handles configuration loading with precedence.
type Loader struct {
	dir        string
	configPath string
	explicit   bool
	lookup     LookupFunc
	logger     zerolog.Logger
}

// NewLoader creates a loader for the devcontainer directory dir. When
// configPath is empty, dir/devcontainer-init.yaml is used if it exists.
func NewLoader(dir, configPath string) *Loader {
	if dir == "" {
		dir = "."
	}
	l := &Loader{
		dir:        dir,
		configPath: configPath,
		explicit:   configPath != "",
		lookup:     os.LookupEnv,
		logger:     log.WithComponent("config"),
	}
	if !l.explicit {
		l.configPath = filepath.Join(dir, DefaultSettingsFile)
	}
	return l
}

// WithLookup replaces the environment source, mainly for tests.
func (l *Loader) WithLookup(lookup LookupFunc) *Loader {
	l.lookup = lookup
	return l
}

// Defaults returns the built-in configuration for dir.
func Defaults(dir string) Config {
	return Config{
		Dir:           dir,
		EnvFile:       DefaultEnvFile,
		Template:      DefaultTemplate,
		Output:        DefaultOutput,
		RequiredKeys:  append([]string(nil), DefaultRequiredKeys...),
		WatchDebounce: DefaultWatchDebounce,
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Relative paths stay relative; call Config.ResolvePaths once flags are applied.
func (l *Loader) Load() (Config, error) {
	cfg := Defaults(l.dir)

	fileCfg, err := l.loadFile()
	if err != nil {
		return cfg, fmt.Errorf("load config file: %w", err)
	}
	if fileCfg != nil {
		cfg.SettingsPath = l.configPath
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge config file %s: %w", l.configPath, err)
		}
	}

	l.mergeEnvConfig(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile loads the settings file with STRICT parsing. A missing
// auto-discovered file is not an error; a missing explicit one is.
func (l *Loader) loadFile() (*FileConfig, error) {
	path := filepath.Clean(l.configPath)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		if !l.explicit && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	l.logger.Debug().
		Str(log.FieldEvent, "config.file_loaded").
		Str(log.FieldConfigPath, path).
		Msg("loaded settings file")
	return &fileCfg, nil
}

func mergeFileConfig(cfg *Config, fc *FileConfig) error {
	if fc.EnvFile != "" {
		cfg.EnvFile = fc.EnvFile
	}
	if fc.Template != "" {
		cfg.Template = fc.Template
	}
	if fc.Output != "" {
		cfg.Output = fc.Output
	}
	if fc.StrictSchema != nil {
		cfg.StrictSchema = *fc.StrictSchema
	}
	if fc.RequiredKeys != nil {
		cfg.RequiredKeys = append([]string(nil), fc.RequiredKeys...)
	}
	if fc.MetricsFile != "" {
		cfg.MetricsFile = fc.MetricsFile
	}
	if fc.WatchDebounce != "" {
		d, err := time.ParseDuration(fc.WatchDebounce)
		if err != nil {
			return fmt.Errorf("watchDebounce: %w", err)
		}
		cfg.WatchDebounce = d
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	cfg.Variables = append(cfg.Variables, fc.Variables...)
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *Config) {
	cfg.EnvFile = parseString(l.lookup, l.logger, EnvEnvFile, cfg.EnvFile)
	cfg.Template = parseString(l.lookup, l.logger, EnvTemplate, cfg.Template)
	cfg.Output = parseString(l.lookup, l.logger, EnvOutput, cfg.Output)
	cfg.StrictSchema = parseBool(l.lookup, l.logger, EnvStrictSchema, cfg.StrictSchema)
	cfg.MetricsFile = parseString(l.lookup, l.logger, EnvMetricsFile, cfg.MetricsFile)
	cfg.WatchDebounce = parseDuration(l.lookup, l.logger, EnvWatchDebounce, cfg.WatchDebounce)
	cfg.LogLevel = parseString(l.lookup, l.logger, EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = parseString(l.lookup, l.logger, EnvLogFormat, cfg.LogFormat)
}

// ResolvePaths returns a copy of cfg whose file paths are joined onto Dir
// unless already absolute.
func (c Config) ResolvePaths() Config {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.Dir, p)
	}
	c.EnvFile = join(c.EnvFile)
	c.Template = join(c.Template)
	c.Output = join(c.Output)
	c.MetricsFile = join(c.MetricsFile)
	return c
}
