// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package devcontainer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/substitute"
)

// SchemaReport summarises the shape check of a generated document.
type SchemaReport struct {
	MissingKeys []string
	Keys        []string // top-level keys, sorted
}

// OK reports whether every required key is present.
func (r SchemaReport) OK() bool {
	return len(r.MissingKeys) == 0
}

type syntaxIssue struct {
	offset int
	err    error
}

// checkJSON parses data and returns the decoded value, or the byte offset
// of the first syntax error.
func checkJSON(data []byte) (any, *syntaxIssue) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &syntaxIssue{offset: errorOffset(err, data), err: err}
	}
	if _, err := dec.Token(); err == nil {
		off := int(dec.InputOffset())
		return nil, &syntaxIssue{offset: off, err: errors.New("trailing content after top-level value")}
	} else if !errors.Is(err, io.EOF) {
		return nil, &syntaxIssue{offset: int(dec.InputOffset()), err: err}
	}
	return doc, nil
}

func errorOffset(err error, data []byte) int {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		off := int(se.Offset) - 1
		if off < 0 {
			off = 0
		}
		return off
	}
	return len(data)
}

// ValidateDocument parses a generated document and checks its shape.
// sub, when non-nil, is used to name the substitution nearest a syntax
// error. Missing required keys are returned in the report; they become a
// *SchemaError only when strict is set. A non-object document is always a
// *SchemaError.
func ValidateDocument(data []byte, sub *substitute.Result, requiredKeys []string, strict bool) (SchemaReport, error) {
	var report SchemaReport

	doc, issue := checkJSON(data)
	if issue != nil {
		ide := &InvalidDocumentError{Err: issue.err}
		ide.Line, ide.Column = substitute.Position(string(data), issue.offset)
		if sub != nil {
			if s, ok := sub.SubstitutionAt(issue.offset); ok {
				ide.Substitution = &s
			}
		}
		return report, ide
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return report, &SchemaError{NotObject: true}
	}
	for k := range obj {
		report.Keys = append(report.Keys, k)
	}
	sort.Strings(report.Keys)
	for _, k := range requiredKeys {
		if _, ok := obj[k]; !ok {
			report.MissingKeys = append(report.MissingKeys, k)
		}
	}
	if strict && !report.OK() {
		return report, &SchemaError{MissingKeys: report.MissingKeys}
	}
	return report, nil
}
