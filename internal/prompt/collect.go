// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package prompt

import (
	"context"
	"fmt"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/vars"
)

// CollectValues asks for every variable in reg, in registry order. The
// suggested answer is current[name] when present and the default
// otherwise. Answers are checked against the variable's kind before they
// are accepted. An empty answer keeps the suggestion.
func CollectValues(ctx context.Context, driver Driver, reg *vars.Registry, current map[string]string) (map[string]string, error) {
	out := make(map[string]string, reg.Len())
	for _, d := range reg.Definitions() {
		suggestion := d.Default
		if v, ok := current[d.Name]; ok && v != "" {
			suggestion = v
		}
		msg := d.Name
		if d.Description != "" {
			msg = fmt.Sprintf("%s (%s)", d.Name, d.Description)
		}
		def := d
		answer, err := driver.Input(ctx, InputConfig{
			Message: msg,
			Default: suggestion,
			Help:    fmt.Sprintf("Replaces %s in the template. Default: %s", d.Placeholder(), d.Default),
			Validator: func(s string) error {
				if s == "" {
					return nil
				}
				return def.Check(s)
			},
		})
		if err != nil {
			return nil, err
		}
		if answer == "" {
			answer = suggestion
		}
		out[d.Name] = answer
	}
	return out, nil
}
