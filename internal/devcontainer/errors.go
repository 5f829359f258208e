// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package devcontainer

import (
	"fmt"
	"strings"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/substitute"
)

// StageError wraps the failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// TemplateError reports a template that is missing, unreadable, or not
// valid JSON before substitution.
type TemplateError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *TemplateError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template %s is not valid JSON at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// InvalidDocumentError reports substituted text that does not parse.
type InvalidDocumentError struct {
	Line   int
	Column int
	Err    error

	// Substitution is the replacement covering, or closest before, the
	// parse failure. It is nil when no substitution precedes it.
	Substitution *substitute.Substitution
}

func (e *InvalidDocumentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generated document is invalid at line %d, column %d: %v", e.Line, e.Column, e.Err)
	if e.Substitution != nil {
		fmt.Fprintf(&b, " (near %s=%q)", e.Substitution.Name, e.Substitution.Value)
	}
	return b.String()
}

func (e *InvalidDocumentError) Unwrap() error { return e.Err }

// SchemaError reports a generated document whose shape is not a usable
// devcontainer configuration.
type SchemaError struct {
	NotObject   bool
	MissingKeys []string
}

func (e *SchemaError) Error() string {
	if e.NotObject {
		return "generated document is not a JSON object"
	}
	return fmt.Sprintf("generated document is missing required keys: %s", strings.Join(e.MissingKeys, ", "))
}

// WriteError reports a failure to replace the output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
