// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package devcontainer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/envfile"
	dclog "github.com/DiamondsLab/diamonds-devcontainer/internal/log"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/metrics"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/substitute"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/vars"
)

type fixture struct {
	dir      string
	env      string
	template string
	output   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		env:      filepath.Join(dir, ".env"),
		template: filepath.Join(dir, "devcontainer.template.json"),
		output:   filepath.Join(dir, "devcontainer.json"),
	}
	f.copy(t, "devcontainer.template.json", f.template)
	f.copy(t, "overlay.env", f.env)
	return f
}

func (f fixture) copy(t *testing.T, name, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o600))
}

func (f fixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func (f fixture) generator(t *testing.T, mutate ...func(*Options)) *Generator {
	t.Helper()
	opts := Options{
		EnvFile:      f.env,
		TemplatePath: f.template,
		OutputPath:   f.output,
		RequiredKeys: []string{"name", "dockerComposeFile", "service", "workspaceFolder"},
	}
	for _, m := range mutate {
		m(&opts)
	}
	g, err := NewGenerator(opts)
	require.NoError(t, err)
	return g
}

func TestGenerator_Golden(t *testing.T) {
	f := newFixture(t)

	res, err := f.generator(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageDone, res.Stage)
	assert.NotEmpty(t, res.RunID)
	assert.True(t, res.Schema.OK())

	got, err := os.ReadFile(f.output)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("testdata", "devcontainer.golden.json"))
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("generated document mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, res.Output, got)
	assert.Len(t, res.Substitutions, 13)
}

func TestGenerator_Idempotent(t *testing.T) {
	f := newFixture(t)
	g := f.generator(t)

	_, err := g.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(f.output)
	require.NoError(t, err)

	_, err = g.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(f.output)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerator_NoOverlayUsesDefaults(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.env))

	res, err := f.generator(t).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Overlay.Loaded)

	got, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"name": "diamonds_project"`)
	assert.Contains(t, string(got), `"DIAMOND_NAME": "ExampleDiamond"`)
	assert.NoError(t, substitute.Check(string(got)))
}

func TestGenerator_EndToEndScenario(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.template, `{"name": "__WORKSPACE_NAME__", "workspaceFolder": "/workspaces/__WORKSPACE_NAME__"}`)
	f.write(t, f.env, "WORKSPACE_NAME=acme_diamond\n")

	_, err := f.generator(t, func(o *Options) { o.RequiredKeys = nil }).Run(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "acme_diamond", "workspaceFolder": "/workspaces/acme_diamond"}`, string(got))
}

func TestGenerator_MalformedOverlayLinesAreWarnings(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.env, "WORKSPACE_NAME=acme\nnot a pair\n1BAD=x\nWORKSPACE_NAME=final\n")

	res, err := f.generator(t).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Overlay.Warnings, 3)

	v, ok := res.Resolved.Lookup("WORKSPACE_NAME")
	require.True(t, ok)
	assert.Equal(t, "final", v)
}

func TestGenerator_ValueCollisionFailsWithoutWriting(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.env, "DIAMOND_NAME=__VAULT_PORT__\n")

	res, err := f.generator(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageFailed, res.Stage)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageSubstitute, se.Stage)

	var ue *substitute.UnresolvedError
	require.ErrorAs(t, err, &ue)
	require.Len(t, ue.Tokens, 1)
	assert.Equal(t, substitute.OriginValue, ue.Tokens[0].Origin)
	assert.Equal(t, "DIAMOND_NAME", ue.Tokens[0].Variable)
	assert.Equal(t, "VAULT_PORT", ue.Tokens[0].Name)

	_, statErr := os.Stat(f.output)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestGenerator_UnknownTemplatePlaceholder(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.template, `{"name": "__WORKSPACE_NAME__", "x": "__NOT_DEFINED__"}`)

	_, err := f.generator(t).Run(context.Background())
	var ue *substitute.UnresolvedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"NOT_DEFINED"}, ue.Names())
	assert.Equal(t, substitute.OriginTemplate, ue.Tokens[0].Origin)
}

func TestGenerator_InvalidDocumentKeepsPreviousOutput(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.output, "previous\n")
	f.write(t, f.env, "DIAMOND_NAME=Acme\"Diamond\n")

	_, err := f.generator(t).Run(context.Background())
	require.Error(t, err)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageValidate, se.Stage)

	var ide *InvalidDocumentError
	require.ErrorAs(t, err, &ide)
	require.NotNil(t, ide.Substitution)
	assert.Equal(t, "DIAMOND_NAME", ide.Substitution.Name)
	assert.Equal(t, 15, ide.Line)
	assert.Contains(t, err.Error(), `DIAMOND_NAME="Acme\"Diamond"`)

	got, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(got))
}

func TestGenerator_InvalidValue(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.env, "VAULT_PORT=99999\nWORKSPACE_NAME=has space\n")

	_, err := f.generator(t).Run(context.Background())
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageResolveVariables, se.Stage)

	var ive *vars.InvalidValueError
	require.ErrorAs(t, err, &ive)
	assert.Contains(t, err.Error(), "VAULT_PORT")
	assert.Contains(t, err.Error(), "WORKSPACE_NAME")
}

func TestGenerator_TemplateErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.Remove(f.template))

		_, err := f.generator(t).Run(context.Background())
		var te *TemplateError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, f.template, te.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not json", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, f.template, "{\n  \"name\": __WORKSPACE_NAME__\n}\n")

		_, err := f.generator(t).Run(context.Background())
		var te *TemplateError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 2, te.Line)
		assert.Equal(t, 11, te.Column)
	})
}

func TestGenerator_Schema(t *testing.T) {
	const tmpl = `{"name": "__WORKSPACE_NAME__", "workspaceFolder": "/workspaces/__WORKSPACE_NAME__"}`

	t.Run("missing keys warn by default", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, f.template, tmpl)

		res, err := f.generator(t).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"dockerComposeFile", "service"}, res.Schema.MissingKeys)
		assert.FileExists(t, f.output)
	})

	t.Run("missing keys fail when strict", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, f.template, tmpl)

		_, err := f.generator(t, func(o *Options) { o.StrictSchema = true }).Run(context.Background())
		var sch *SchemaError
		require.ErrorAs(t, err, &sch)
		assert.Equal(t, []string{"dockerComposeFile", "service"}, sch.MissingKeys)
		assert.NoFileExists(t, f.output)
	})

	t.Run("top level must be an object", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, f.template, `["__WORKSPACE_NAME__"]`)

		_, err := f.generator(t).Run(context.Background())
		var sch *SchemaError
		require.ErrorAs(t, err, &sch)
		assert.True(t, sch.NotObject)
	})
}

func TestGenerator_LogFields(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.template, `{"name": "__WORKSPACE_NAME__", "workspaceFolder": "/workspaces/__WORKSPACE_NAME__"}`)

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	_, err := f.generator(t).Run(ctx)
	require.NoError(t, err)

	var missing []string
	substitutions := -1.0
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if k, ok := entry[dclog.FieldKey].(string); ok {
			missing = append(missing, k)
		}
		if entry[dclog.FieldEvent] == "generator.done" {
			substitutions, _ = entry[dclog.FieldSubstitutions].(float64)
		}
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"dockerComposeFile", "service"}, missing)
	assert.Equal(t, 2.0, substitutions)
}

func TestGenerator_Metrics(t *testing.T) {
	f := newFixture(t)
	m := metrics.NewGenerator()
	promFile := filepath.Join(f.dir, "metrics", "devcontainer_init.prom")

	g := f.generator(t, func(o *Options) {
		o.Metrics = m
		o.MetricsFile = promFile
	})
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `devcontainer_init_runs_total{result="success",stage="done"} 1`)
	assert.Contains(t, string(data), "devcontainer_init_substitutions 13")

	f.write(t, f.env, "VAULT_PORT=0\n")
	_, err = g.Run(context.Background())
	require.Error(t, err)

	data, err = os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `devcontainer_init_runs_total{result="failure",stage="resolve_variables"} 1`)
}

func TestGenerator_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.generator(t).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, f.output)
}

func TestNewGenerator_RequiresPaths(t *testing.T) {
	_, err := NewGenerator(Options{OutputPath: "out.json"})
	require.Error(t, err)
	_, err = NewGenerator(Options{TemplatePath: "t.json"})
	require.Error(t, err)

	g, err := NewGenerator(Options{TemplatePath: "t.json", OutputPath: "out.json"})
	require.NoError(t, err)
	assert.Equal(t, 9, g.opts.Registry.Len())
}

func TestGenerator_OverlayIsNotModified(t *testing.T) {
	f := newFixture(t)
	before, err := os.ReadFile(f.env)
	require.NoError(t, err)

	_, err = f.generator(t).Run(context.Background())
	require.NoError(t, err)

	after, err := os.ReadFile(f.env)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	ov, err := envfile.Load(f.env)
	require.NoError(t, err)
	assert.Empty(t, ov.Warnings)
}
