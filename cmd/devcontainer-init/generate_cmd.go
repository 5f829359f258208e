// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/devcontainer"
)

// identityVars are echoed after a successful run.
var identityVars = []string{"WORKSPACE_NAME", "DIAMOND_NAME"}

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate devcontainer.json (default command)",
		Args:  noArgs,
		RunE:  a.runGenerate,
	}
}

func (a *app) runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := a.settings(cmd)
	if err != nil {
		return err
	}
	gen, err := a.generator(cfg)
	if err != nil {
		return err
	}
	res, err := gen.Run(cmd.Context())
	if err != nil {
		return err
	}
	a.summary(res, cfg.Output)
	return nil
}

func (a *app) summary(res *devcontainer.Result, output string) {
	a.printf("✓ generated %s\n", output)
	for _, name := range identityVars {
		if v, ok := res.Resolved.Lookup(name); ok {
			a.printf("  %s=%s\n", name, v)
		}
	}
	if len(res.Schema.MissingKeys) > 0 {
		a.printf("  warning: missing keys %v\n", res.Schema.MissingKeys)
	}
}
