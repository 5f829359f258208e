// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package devcontainer turns a devcontainer template and a .env overlay
// into a validated devcontainer.json.
//
// A run moves through a fixed sequence of stages:
//
//	start -> load_overlay -> resolve_variables -> substitute -> validate -> write -> done
//
// Any stage may move to failed instead. Nothing is written unless every
// earlier stage succeeded.
package devcontainer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/envfile"
	dclog "github.com/DiamondsLab/diamonds-devcontainer/internal/log"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/metrics"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/substitute"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/vars"
)

// Stage names one step of a generator run.
type Stage string

const (
	StageStart            Stage = "start"
	StageLoadOverlay      Stage = "load_overlay"
	StageResolveVariables Stage = "resolve_variables"
	StageSubstitute       Stage = "substitute"
	StageValidate         Stage = "validate"
	StageWrite            Stage = "write"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// Options configure a Generator.
type Options struct {
	EnvFile      string
	TemplatePath string
	OutputPath   string

	// Registry defaults to the builtin variables.
	Registry     *vars.Registry
	RequiredKeys []string
	StrictSchema bool

	// Metrics, when set, records every run. MetricsFile additionally
	// exports them as a textfile after each run.
	Metrics     *metrics.Generator
	MetricsFile string
}

// Result describes a run. On failure it holds whatever the completed
// stages produced.
type Result struct {
	RunID         string
	Stage         Stage
	Overlay       *envfile.Overlay
	Resolved      vars.Resolved
	Substitutions []substitute.Substitution
	Output        []byte
	Schema        SchemaReport
	Duration      time.Duration
}

// Generator runs the template pipeline. It is safe to call Run repeatedly;
// each call reads the inputs afresh.
type Generator struct {
	opts Options
	now  func() time.Time
}

// NewGenerator validates opts and returns a Generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.TemplatePath == "" {
		return nil, errors.New("devcontainer: template path is required")
	}
	if opts.OutputPath == "" {
		return nil, errors.New("devcontainer: output path is required")
	}
	if opts.Registry == nil {
		reg, err := vars.BuiltinRegistry()
		if err != nil {
			return nil, err
		}
		opts.Registry = reg
	}
	return &Generator{opts: opts, now: time.Now}, nil
}

type run struct {
	logger zerolog.Logger
	stage  Stage
}

func (r *run) to(next Stage) {
	r.logger.Debug().
		Str(dclog.FieldEvent, "generator.transition").
		Str(dclog.FieldOldState, string(r.stage)).
		Str(dclog.FieldNewState, string(next)).
		Msg("stage transition")
	r.stage = next
}

// Run executes one generation. Every failure is a *StageError wrapping one
// of the package's typed errors, a *envfile.ReadError, a
// *substitute.UnresolvedError or the joined *vars.InvalidValueError values.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	if dclog.RunIDFromContext(ctx) == "" {
		ctx, _ = dclog.NewRunContext(ctx)
	}
	logger := dclog.WithComponentFromContext(ctx, "generator").With().
		Str(dclog.FieldTemplatePath, g.opts.TemplatePath).
		Str(dclog.FieldOutputPath, g.opts.OutputPath).
		Logger()
	ctx = logger.WithContext(ctx)

	start := g.now()
	res := &Result{RunID: dclog.RunIDFromContext(ctx), Stage: StageStart}
	r := &run{logger: logger, stage: StageStart}

	fail := func(stage Stage, err error) (*Result, error) {
		r.to(StageFailed)
		res.Stage = StageFailed
		res.Duration = g.now().Sub(start)
		if g.opts.Metrics != nil {
			g.opts.Metrics.RecordFailure(res.Duration, string(stage))
		}
		g.exportMetrics(logger)
		logger.Error().Err(err).
			Str(dclog.FieldEvent, "generator.failed").
			Str(dclog.FieldStage, string(stage)).
			Msg("devcontainer generation failed")
		return res, &StageError{Stage: stage, Err: err}
	}
	enter := func(stage Stage) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.to(stage)
		res.Stage = stage
		return nil
	}

	// load_overlay
	if err := enter(StageLoadOverlay); err != nil {
		return fail(StageLoadOverlay, err)
	}
	overlay, err := envfile.Load(g.opts.EnvFile)
	if err != nil {
		return fail(StageLoadOverlay, err)
	}
	res.Overlay = overlay
	if !overlay.Loaded {
		logger.Info().Str(dclog.FieldEnvFile, g.opts.EnvFile).Msg("no .env overlay found, using defaults")
	}
	for _, w := range overlay.Warnings {
		logger.Warn().
			Str(dclog.FieldEnvFile, g.opts.EnvFile).
			Int(dclog.FieldLine, w.Line).
			Msg(w.Message)
	}

	// resolve_variables
	if err := enter(StageResolveVariables); err != nil {
		return fail(StageResolveVariables, err)
	}
	resolved, err := vars.Resolve(overlay, g.opts.Registry)
	res.Resolved = resolved
	if err != nil {
		return fail(StageResolveVariables, err)
	}
	for _, k := range resolved.Unused {
		logger.Debug().Str(dclog.FieldVariable, k).Msg("overlay key has no variable definition")
	}
	for _, v := range resolved.Values() {
		logger.Debug().
			Str(dclog.FieldVariable, v.Name).
			Str(dclog.FieldValue, v.Value).
			Str(dclog.FieldSource, string(v.Source)).
			Msg("resolved variable")
	}

	// substitute
	if err := enter(StageSubstitute); err != nil {
		return fail(StageSubstitute, err)
	}
	tmpl, err := ReadTemplate(g.opts.TemplatePath)
	if err != nil {
		return fail(StageSubstitute, err)
	}
	sub, err := substitute.Apply(string(tmpl), resolved)
	res.Substitutions = sub.Substitutions
	if err != nil {
		return fail(StageSubstitute, err)
	}

	// validate
	if err := enter(StageValidate); err != nil {
		return fail(StageValidate, err)
	}
	output := []byte(sub.Text)
	report, err := ValidateDocument(output, &sub, g.opts.RequiredKeys, g.opts.StrictSchema)
	res.Schema = report
	if err != nil {
		return fail(StageValidate, err)
	}
	for _, k := range report.MissingKeys {
		logger.Warn().Str(dclog.FieldKey, k).Msg("generated document is missing a recommended key")
	}
	res.Output = output

	// write
	if err := enter(StageWrite); err != nil {
		return fail(StageWrite, err)
	}
	if err := WriteOutput(ctx, g.opts.OutputPath, output); err != nil {
		return fail(StageWrite, err)
	}

	r.to(StageDone)
	res.Stage = StageDone
	res.Duration = g.now().Sub(start)
	if g.opts.Metrics != nil {
		g.opts.Metrics.RecordSuccess(res.Duration, len(res.Substitutions), len(overlay.Warnings), g.now())
	}
	g.exportMetrics(logger)

	logger.Info().
		Str(dclog.FieldEvent, "generator.done").
		Int(dclog.FieldSubstitutions, len(res.Substitutions)).
		Dur(dclog.FieldDuration, res.Duration).
		Msg("devcontainer generated")
	return res, nil
}

func (g *Generator) exportMetrics(logger zerolog.Logger) {
	if g.opts.Metrics == nil || g.opts.MetricsFile == "" {
		return
	}
	if err := g.opts.Metrics.WriteTextfile(g.opts.MetricsFile); err != nil {
		logger.Warn().Err(err).Str(dclog.FieldPath, g.opts.MetricsFile).Msg("metrics export failed")
	}
}

// ReadTemplate reads the template at path and checks that it is valid JSON
// before any substitution happens.
func ReadTemplate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &TemplateError{Path: path, Err: fmt.Errorf("template not found: %w", err)}
		}
		return nil, &TemplateError{Path: path, Err: err}
	}
	if _, issue := checkJSON(data); issue != nil {
		te := &TemplateError{Path: path, Err: issue.err}
		te.Line, te.Column = substitute.Position(string(data), issue.offset)
		return nil, te
	}
	return data, nil
}
