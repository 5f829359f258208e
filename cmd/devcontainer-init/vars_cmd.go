// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/envfile"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/vars"
)

type varRow struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Source      string `json:"source"`
	Default     string `json:"default"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

func (a *app) varsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Show every variable with its resolved value and source",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case "table", "env", "json":
			default:
				return usageErrorf("--format must be table, env or json, got %q", format)
			}
			cfg, err := a.settings(cmd)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			overlay, err := envfile.Load(cfg.EnvFile)
			if err != nil {
				return err
			}
			resolved, resolveErr := vars.Resolve(overlay, reg)

			rows := make([]varRow, 0, reg.Len())
			for _, d := range reg.Definitions() {
				row := varRow{
					Name:        d.Name,
					Default:     d.Default,
					Kind:        string(d.Kind),
					Description: d.Description,
				}
				if row.Kind == "" {
					row.Kind = string(vars.KindText)
				}
				for _, v := range resolved.Values() {
					if v.Name == d.Name {
						row.Value, row.Source = v.Value, string(v.Source)
					}
				}
				rows = append(rows, row)
			}

			if err := a.printVars(format, rows); err != nil {
				return err
			}
			for _, w := range overlay.Warnings {
				fmt.Fprintf(a.stderr, "warning: %s: %s\n", cfg.EnvFile, w)
			}
			return resolveErr
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, env or json")
	return cmd
}

func (a *app) printVars(format string, rows []varRow) error {
	switch format {
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "env":
		for _, r := range rows {
			fmt.Fprintf(a.stdout, "%s=%s\n", r.Name, r.Value)
		}
	default:
		fmt.Fprintf(a.stdout, "%-28s %-8s %-10s %s\n", "NAME", "SOURCE", "KIND", "VALUE")
		for _, r := range rows {
			fmt.Fprintf(a.stdout, "%-28s %-8s %-10s %s\n", r.Name, r.Source, r.Kind, r.Value)
		}
	}
	return nil
}
