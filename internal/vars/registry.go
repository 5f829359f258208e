// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package vars

import (
	"fmt"
	"regexp"
	"sync"
)

// Kind selects the value check applied to a resolved variable.
type Kind string

const (
	KindText       Kind = "text"
	KindIdentifier Kind = "identifier"
	KindPort       Kind = "port"
)

// Placeholder delimiters wrapped around a variable name in templates.
const (
	PlaceholderPrefix = "__"
	PlaceholderSuffix = "__"
)

// NameExpr is the grammar of a variable name: upper-snake-case segments with
// no leading, trailing or doubled underscore, so that no placeholder token
// can be a prefix of another.
//
// The leftover rescan uses the same grammar on purpose. It is narrower than
// the looser leak pattern __[A-Z0-9_]+__, so underscore runs such as "_____"
// or "__init__" pass through as literal text.
const NameExpr = `[A-Z0-9]+(?:_[A-Z0-9]+)*`

var nameRe = regexp.MustCompile(`^` + NameExpr + `$`)

// ValidName reports whether name follows NameExpr.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// Placeholder returns the template token for name.
func Placeholder(name string) string {
	return PlaceholderPrefix + name + PlaceholderSuffix
}

// Definition describes a single template variable.
type Definition struct {
	Name        string         // upper-snake-case, e.g. WORKSPACE_NAME
	Default     string         // value used when the overlay has none
	Kind        Kind           // value check; empty means KindText
	Pattern     *regexp.Regexp // optional extra constraint on the value
	Description string         // shown by `vars` and in the default .env
}

// Placeholder returns the template token for the definition.
func (d Definition) Placeholder() string {
	return Placeholder(d.Name)
}

// Registry is an ordered, duplicate-free set of definitions.
type Registry struct {
	defs   []Definition
	byName map[string]int
}

// Builtin returns the definitions every devcontainer template may use.
func Builtin() []Definition {
	return []Definition{
		// --- IDENTITY ---
		{Name: "WORKSPACE_NAME", Default: "diamonds_project", Kind: KindIdentifier, Description: "Container and workspace folder name"},
		{Name: "DIAMOND_NAME", Default: "ExampleDiamond", Kind: KindText, Description: "Diamond contract name used by tooling"},

		// --- VAULT ---
		{Name: "VAULT_PORT", Default: "8201", Kind: KindPort, Description: "Host port mapped to the Vault dev server"},
		{Name: "VAULT_COMMAND", Default: "server -dev -dev-root-token-id=root -dev-listen-address=0.0.0.0:8200", Kind: KindText, Description: "Vault container command"},

		// --- PORTS ---
		{Name: "HARDHAT_PORT", Default: "8545", Kind: KindPort, Description: "Hardhat node RPC port"},
		{Name: "ADDITIONAL_BLOCKCHAIN_PORT", Default: "8556", Kind: KindPort, Description: "Secondary chain RPC port"},
		{Name: "FRONTEND_PORT", Default: "3001", Kind: KindPort, Description: "Frontend dev server port"},
		{Name: "API_PORT", Default: "5001", Kind: KindPort, Description: "API server port"},
		{Name: "DOC_PORT", Default: "8081", Kind: KindPort, Description: "Documentation server port"},
	}
}

var (
	builtinRegistry    *Registry
	builtinRegistryErr error
	builtinOnce        sync.Once
)

// BuiltinRegistry returns the registry built from Builtin.
// Thread-safe via sync.Once.
func BuiltinRegistry() (*Registry, error) {
	builtinOnce.Do(func() {
		builtinRegistry, builtinRegistryErr = NewRegistry(Builtin()...)
	})
	return builtinRegistry, builtinRegistryErr
}

// NewRegistry builds a registry. It returns an error if a name is invalid or
// duplicated, or if a default fails its own value check.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:   make([]Definition, 0, len(defs)),
		byName: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if err := r.add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(d Definition) error {
	if !ValidName(d.Name) {
		return fmt.Errorf("invalid variable name %q: must match %s", d.Name, NameExpr)
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("duplicate variable definition: %s", d.Name)
	}
	if d.Kind == "" {
		d.Kind = KindText
	}
	switch d.Kind {
	case KindText, KindIdentifier, KindPort:
	default:
		return fmt.Errorf("variable %s: unknown kind %q", d.Name, d.Kind)
	}
	if err := d.Check(d.Default); err != nil {
		return fmt.Errorf("variable %s: invalid default: %w", d.Name, err)
	}
	r.byName[d.Name] = len(r.defs)
	r.defs = append(r.defs, d)
	return nil
}

// With returns a new registry holding r's definitions followed by extra.
func (r *Registry) With(extra ...Definition) (*Registry, error) {
	all := make([]Definition, 0, len(r.defs)+len(extra))
	all = append(all, r.defs...)
	all = append(all, extra...)
	return NewRegistry(all...)
}

// Definitions returns a copy of the definitions in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}
