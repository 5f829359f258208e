// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package substitute replaces __NAME__ placeholder tokens in template text.
//
// Replacement is a single left-to-right pass: inserted values are never
// scanned again, so a value that happens to look like a placeholder is
// kept verbatim. The finished text is then rescanned and any surviving
// placeholder-shaped token, whether it came from the template or from an
// inserted value, is reported as an *UnresolvedError.
package substitute

import (
	"regexp"
	"strings"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/vars"
)

// Pattern matches a placeholder token and captures its name.
var Pattern = regexp.MustCompile(regexp.QuoteMeta(vars.PlaceholderPrefix) + `(` + vars.NameExpr + `)` + regexp.QuoteMeta(vars.PlaceholderSuffix))

// Substitution records one replaced token.
type Substitution struct {
	Name           string
	Value          string
	TemplateOffset int // byte offset of the token in the template
	Start          int // byte offset of the value in the output
	End            int // exclusive end of the value in the output
}

// Result is the outcome of Apply.
type Result struct {
	Text          string
	Substitutions []Substitution
}

// Lookup resolves a variable name to its value.
type Lookup interface {
	Lookup(name string) (string, bool)
}

// Apply replaces every known placeholder in text. On success the result
// contains no placeholder-shaped tokens. Otherwise the partially
// substituted result is returned together with an *UnresolvedError so
// callers can report it; it must not be written anywhere.
func Apply(text string, values Lookup) (Result, error) {
	matches := Pattern.FindAllStringSubmatchIndex(text, -1)

	var b strings.Builder
	b.Grow(len(text))
	res := Result{Substitutions: make([]Substitution, 0, len(matches))}

	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		name := text[m[2]:m[3]]
		value, ok := values.Lookup(name)
		if !ok {
			continue
		}
		b.WriteString(text[last:start])
		s := Substitution{Name: name, Value: value, TemplateOffset: start, Start: b.Len()}
		b.WriteString(value)
		s.End = b.Len()
		res.Substitutions = append(res.Substitutions, s)
		last = end
	}
	b.WriteString(text[last:])
	res.Text = b.String()

	if leftovers := res.scan(); len(leftovers) > 0 {
		return res, &UnresolvedError{Tokens: leftovers}
	}
	return res, nil
}

// Check rescans already generated text and returns an *UnresolvedError
// listing every placeholder-shaped token left in it.
func Check(text string) error {
	if leftovers := (Result{Text: text}).scan(); len(leftovers) > 0 {
		return &UnresolvedError{Tokens: leftovers}
	}
	return nil
}

// SubstitutionAt returns the substitution whose value covers offset in the
// output, or failing that the closest one ending before it.
func (r Result) SubstitutionAt(offset int) (Substitution, bool) {
	var best Substitution
	found := false
	for _, s := range r.Substitutions {
		if offset >= s.Start && offset < s.End {
			return s, true
		}
		if s.End <= offset {
			best, found = s, true
		}
	}
	return best, found
}

func (r Result) scan() []Unresolved {
	var out []Unresolved
	for _, m := range Pattern.FindAllStringSubmatchIndex(r.Text, -1) {
		u := Unresolved{
			Token:  r.Text[m[0]:m[1]],
			Name:   r.Text[m[2]:m[3]],
			Offset: m[0],
			Origin: OriginTemplate,
		}
		u.Line, u.Column = Position(r.Text, m[0])
		for _, s := range r.Substitutions {
			if m[0] < s.End && m[1] > s.Start {
				u.Origin = OriginValue
				u.Variable = s.Name
				break
			}
		}
		out = append(out, u)
	}
	if len(out) == 0 {
		return nil
	}
	paths := keyPaths(r.Text)
	for i := range out {
		out[i].KeyPath = paths.at(out[i].Offset)
	}
	return out
}

// Position converts a byte offset into a 1-based line and column.
func Position(text string, offset int) (line, column int) {
	if offset > len(text) {
		offset = len(text)
	}
	prefix := text[:offset]
	line = strings.Count(prefix, "\n") + 1
	column = offset - strings.LastIndexByte(prefix, '\n')
	return line, column
}
