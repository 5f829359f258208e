// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package vars

import (
	"errors"
	"sort"
)

// Source records where a resolved value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceOverlay Source = "overlay"
)

// Overlay is the read side of a parsed .env file.
type Overlay interface {
	Lookup(key string) (string, bool)
	Keys() []string
}

// Value is one resolved variable.
type Value struct {
	Name   string
	Value  string
	Source Source
}

// Resolved maps every registered variable to its effective value.
type Resolved struct {
	values []Value
	index  map[string]int

	// Unused lists overlay keys that no definition consumes, sorted.
	Unused []string
}

// Lookup returns the resolved value for name.
func (r Resolved) Lookup(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.values[i].Value, true
}

// Values returns the resolved variables in registry order.
func (r Resolved) Values() []Value {
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

// Map returns the resolved variables as a name to value map.
func (r Resolved) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for _, v := range r.values {
		out[v.Name] = v.Value
	}
	return out
}

// Len returns the number of resolved variables.
func (r Resolved) Len() int {
	return len(r.values)
}

// NewResolved builds a Resolved from explicit values, in the given order.
// Later duplicates replace earlier ones.
func NewResolved(values ...Value) Resolved {
	r := Resolved{index: make(map[string]int, len(values))}
	for _, v := range values {
		if i, ok := r.index[v.Name]; ok {
			r.values[i] = v
			continue
		}
		r.index[v.Name] = len(r.values)
		r.values = append(r.values, v)
	}
	return r
}

// Resolve picks, for every definition, the overlay value when present and
// non-empty and the default otherwise. An explicit empty assignment (KEY=)
// therefore falls back to the default. Values failing their definition's
// check are reported together as *InvalidValueError entries.
func Resolve(overlay Overlay, reg *Registry) (Resolved, error) {
	defs := reg.Definitions()
	values := make([]Value, 0, len(defs))
	var errs []error

	for _, d := range defs {
		v := Value{Name: d.Name, Value: d.Default, Source: SourceDefault}
		if overlay != nil {
			if ov, ok := overlay.Lookup(d.Name); ok && ov != "" {
				v.Value = ov
				v.Source = SourceOverlay
			}
		}
		if err := d.Check(v.Value); err != nil {
			errs = append(errs, &InvalidValueError{
				Name:   d.Name,
				Value:  v.Value,
				Source: v.Source,
				Reason: err.Error(),
			})
		}
		values = append(values, v)
	}

	resolved := NewResolved(values...)
	if overlay != nil {
		for _, k := range overlay.Keys() {
			if _, ok := reg.Lookup(k); !ok {
				resolved.Unused = append(resolved.Unused, k)
			}
		}
		sort.Strings(resolved.Unused)
	}

	if len(errs) > 0 {
		return resolved, errors.Join(errs...)
	}
	return resolved, nil
}
