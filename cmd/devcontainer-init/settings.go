// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/config"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/devcontainer"
	dclog "github.com/DiamondsLab/diamonds-devcontainer/internal/log"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/metrics"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/version"
)

type app struct {
	stdout io.Writer
	stderr io.Writer

	dir          string
	configPath   string
	envFile      string
	template     string
	output       string
	metricsFile  string
	logLevel     string
	logFormat    string
	strictSchema bool
	quiet        bool
}

func (a *app) bindGlobalFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&a.dir, "dir", ".", "devcontainer directory holding the template, .env and output")
	pf.StringVar(&a.configPath, "config", "", "generator settings file (default <dir>/"+config.DefaultSettingsFile+" if present)")
	pf.StringVar(&a.envFile, "env-file", "", "overlay file (default <dir>/"+config.DefaultEnvFile+")")
	pf.StringVar(&a.template, "template", "", "template file (default <dir>/"+config.DefaultTemplate+")")
	pf.StringVar(&a.output, "output", "", "generated file (default <dir>/"+config.DefaultOutput+")")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	pf.BoolVar(&a.strictSchema, "strict-schema", false, "fail when the generated document lacks a required key")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "suppress the summary on stdout and info logs")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: console or json")
}

// settings resolves the effective configuration: defaults, then the
// settings file, then DEVCONTAINER_INIT_* variables, then flags. It also
// reconfigures logging to match.
func (a *app) settings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.NewLoader(a.dir, a.configPath).Load()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("env-file") {
		cfg.EnvFile = a.envFile
	}
	if flags.Changed("template") {
		cfg.Template = a.template
	}
	if flags.Changed("output") {
		cfg.Output = a.output
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.metricsFile
	}
	if flags.Changed("strict-schema") {
		cfg.StrictSchema = a.strictSchema
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	switch {
	case flags.Changed("log-level"):
		cfg.LogLevel = a.logLevel
	case a.quiet:
		cfg.LogLevel = "warn"
	}

	if err := config.Validate(cfg); err != nil {
		return cfg, &usageError{err: err}
	}
	cfg = cfg.ResolvePaths()
	if err := config.CheckOutputPath(cfg); err != nil {
		return cfg, &usageError{err: err}
	}

	dclog.Configure(dclog.Config{
		Level:   cfg.LogLevel,
		Format:  dclog.ParseFormat(cfg.LogFormat),
		Output:  a.stderr,
		Version: version.Version,
	})
	if cfg.SettingsPath != "" {
		logger := dclog.WithComponent("cli")
		logger.Debug().
			Str(dclog.FieldConfigPath, cfg.SettingsPath).
			Msg("using settings file")
	}
	return cfg, nil
}

func (a *app) generator(cfg config.Config) (*devcontainer.Generator, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	opts := devcontainer.Options{
		EnvFile:      cfg.EnvFile,
		TemplatePath: cfg.Template,
		OutputPath:   cfg.Output,
		Registry:     reg,
		RequiredKeys: cfg.RequiredKeys,
		StrictSchema: cfg.StrictSchema,
	}
	if cfg.MetricsFile != "" {
		opts.Metrics = metrics.NewGenerator()
		opts.MetricsFile = cfg.MetricsFile
	}
	return devcontainer.NewGenerator(opts)
}

// printf writes to stdout unless --quiet is set.
func (a *app) printf(format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(a.stdout, format, args...)
}
