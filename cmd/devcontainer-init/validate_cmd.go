// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/devcontainer"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/substitute"
)

func (a *app) validateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an existing devcontainer.json without regenerating it",
		Long: `validate parses a generated devcontainer.json, checks that it is a JSON
object carrying the required keys and that no __NAME__ placeholder is left.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.settings(cmd)
			if err != nil {
				return err
			}
			path := cfg.Output
			if file != "" {
				path = filepath.Clean(file)
			}

			// #nosec G304 -- path is provided by the operator via CLI
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			report, err := devcontainer.ValidateDocument(data, nil, cfg.RequiredKeys, cfg.StrictSchema)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := substitute.Check(string(data)); err != nil {
				var ue *substitute.UnresolvedError
				if errors.As(err, &ue) {
					return fmt.Errorf("%s: %s left unresolved: %w", path, strings.Join(ue.Names(), ", "), err)
				}
				return fmt.Errorf("%s: %w", path, err)
			}

			a.printf("✓ %s is valid\n", path)
			for _, k := range report.MissingKeys {
				a.printf("  warning: missing key %q\n", k)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "document to check, relative to the working directory (default: the configured output)")
	return cmd
}
