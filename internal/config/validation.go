// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/vars"
	"github.com/rs/zerolog"
)

// Validate checks cross-field constraints of the effective configuration.
func Validate(cfg Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Template) == "" {
		errs = append(errs, errors.New("template path is empty"))
	}
	if strings.TrimSpace(cfg.Output) == "" {
		errs = append(errs, errors.New("output path is empty"))
	}
	if cfg.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("watchDebounce must not be negative, got %s", cfg.WatchDebounce))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("logLevel %q: %w", cfg.LogLevel, err))
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat must be console or json, got %q", cfg.LogFormat))
	}
	for _, k := range cfg.RequiredKeys {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, errors.New("requiredKeys contains an empty key"))
			break
		}
	}
	if _, err := cfg.Registry(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// CheckOutputPath rejects an output that names the template file. It
// compares absolute paths and, when both files exist, their identity, so
// it must run after ResolvePaths.
func CheckOutputPath(cfg Config) error {
	tmpl, err := filepath.Abs(cfg.Template)
	if err != nil {
		return fmt.Errorf("resolve template %s: %w", cfg.Template, err)
	}
	out, err := filepath.Abs(cfg.Output)
	if err != nil {
		return fmt.Errorf("resolve output %s: %w", cfg.Output, err)
	}
	same := tmpl == out
	if !same {
		ti, terr := os.Stat(tmpl)
		oi, oerr := os.Stat(out)
		same = terr == nil && oerr == nil && os.SameFile(ti, oi)
	}
	if same {
		return fmt.Errorf("%w: output %s would overwrite the template", ErrInvalidConfig, cfg.Output)
	}
	return nil
}

// Registry returns the builtin variable registry extended with the
// variables declared in the settings file.
func (c Config) Registry() (*vars.Registry, error) {
	base, err := vars.BuiltinRegistry()
	if err != nil {
		return nil, err
	}
	if len(c.Variables) == 0 {
		return base, nil
	}
	extra := make([]vars.Definition, 0, len(c.Variables))
	for _, spec := range c.Variables {
		d := vars.Definition{
			Name:        spec.Name,
			Default:     spec.Default,
			Kind:        vars.Kind(strings.ToLower(spec.Kind)),
			Description: spec.Description,
		}
		if spec.Pattern != "" {
			re, err := regexp.Compile(spec.Pattern)
			if err != nil {
				return nil, fmt.Errorf("variable %s: pattern: %w", spec.Name, err)
			}
			d.Pattern = re
		}
		extra = append(extra, d)
	}
	return base.With(extra...)
}
