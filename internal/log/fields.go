// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService = "service"
	FieldVersion = "version"
	FieldRunID   = "run_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldDuration  = "duration"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path fields
	FieldPath         = "path"
	FieldEnvFile      = "env_file"
	FieldTemplatePath = "template_path"
	FieldOutputPath   = "output_path"
	FieldConfigPath   = "config_path"

	// Variable fields
	FieldVariable = "variable"
	FieldValue    = "value"
	FieldSource   = "source"
	FieldLine     = "line"

	// Config and document fields
	FieldKey           = "key"
	FieldDefault       = "default"
	FieldOp            = "op"
	FieldSubstitutions = "substitutions"
)
