// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package vars

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// InvalidValueError reports a resolved value rejected by its definition.
type InvalidValueError struct {
	Name   string
	Value  string
	Source Source
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q (from %s): %s", e.Name, e.Value, e.Source, e.Reason)
}

// Check validates value against the definition's kind and pattern.
func (d Definition) Check(value string) error {
	switch d.Kind {
	case KindIdentifier:
		if !identifierRe.MatchString(value) {
			return errors.New("must contain only letters, numbers, underscores, and hyphens")
		}
	case KindPort:
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil || n == 0 {
			return errors.New("must be a port number between 1 and 65535")
		}
	}
	if d.Pattern != nil && !d.Pattern.MatchString(value) {
		return fmt.Errorf("must match %s", d.Pattern.String())
	}
	return nil
}
