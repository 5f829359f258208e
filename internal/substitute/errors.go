// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package substitute

import (
	"fmt"
	"strings"
)

// Origin tells whether a surviving token was written in the template or
// arrived inside a substituted value.
type Origin string

const (
	OriginTemplate Origin = "template"
	OriginValue    Origin = "value"
)

// Unresolved is a placeholder-shaped token left in the output.
type Unresolved struct {
	Token    string
	Name     string
	Offset   int
	Line     int
	Column   int
	KeyPath  string // JSON path of the enclosing string, if known
	Origin   Origin
	Variable string // set when Origin is OriginValue
}

func (u Unresolved) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at line %d, column %d", u.Token, u.Line, u.Column)
	if u.KeyPath != "" {
		fmt.Fprintf(&b, " (%s)", u.KeyPath)
	}
	if u.Origin == OriginValue {
		fmt.Fprintf(&b, " in value of %s", u.Variable)
	} else {
		b.WriteString(": no variable definition")
	}
	return b.String()
}

// UnresolvedError reports placeholder tokens that survived substitution.
type UnresolvedError struct {
	Tokens []Unresolved
}

func (e *UnresolvedError) Error() string {
	parts := make([]string, len(e.Tokens))
	for i, t := range e.Tokens {
		parts[i] = t.String()
	}
	noun := "placeholder"
	if len(e.Tokens) > 1 {
		noun = "placeholders"
	}
	return fmt.Sprintf("unresolved %s: %s", noun, strings.Join(parts, "; "))
}

// Names returns the distinct unresolved names in order of appearance.
func (e *UnresolvedError) Names() []string {
	seen := make(map[string]struct{}, len(e.Tokens))
	var out []string
	for _, t := range e.Tokens {
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t.Name)
	}
	return out
}
