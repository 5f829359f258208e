// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/envfile"
	"github.com/DiamondsLab/diamonds-devcontainer/internal/prompt"
)

func (a *app) initEnvCmd() *cobra.Command {
	var force, interactive bool
	cmd := &cobra.Command{
		Use:   "init-env",
		Short: "Write a .env overlay listing every variable with its default",
		Long: `init-env writes the overlay file with one KEY=VALUE line per variable.
An existing file is kept unless --force is given, or unless the overwrite
is confirmed in --interactive mode, where each value is asked for first.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.settings(cmd)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			_, statErr := os.Stat(cfg.EnvFile)
			exists := statErr == nil

			var values map[string]string
			if interactive {
				driver := prompt.NewSurveyDriver()
				if exists && !force {
					ok, err := driver.Confirm(cmd.Context(), prompt.ConfirmConfig{
						Message: fmt.Sprintf("%s exists. Overwrite?", cfg.EnvFile),
					})
					if err != nil {
						return err
					}
					if !ok {
						a.printf("kept %s\n", cfg.EnvFile)
						return nil
					}
					force = true
				}
				current := map[string]string{}
				if exists {
					overlay, err := envfile.Load(cfg.EnvFile)
					if err != nil {
						return err
					}
					for _, e := range overlay.Entries {
						current[e.Key] = e.Value
					}
				}
				values, err = prompt.CollectValues(cmd.Context(), driver, reg, current)
				if err != nil {
					return err
				}
			}

			content := envfile.DefaultContent(reg, values)
			if err := envfile.WriteDefault(cfg.EnvFile, content, force); err != nil {
				if errors.Is(err, envfile.ErrExists) {
					return fmt.Errorf("%w (use --force to overwrite)", err)
				}
				return err
			}
			a.printf("✓ wrote %s\n", cfg.EnvFile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing overlay")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for each value on the terminal")
	return cmd
}
