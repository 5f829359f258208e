// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/devcontainer"
)

func (a *app) watchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the template or .env changes",
		Long: `watch generates once, then regenerates each time the template or overlay
is saved. Failures are reported and the previous output is kept. Stop with
Ctrl+C.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.settings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debounce") {
				if debounce < 0 {
					return usageErrorf("--debounce must not be negative, got %s", debounce)
				}
				cfg.WatchDebounce = debounce
			}
			gen, err := a.generator(cfg)
			if err != nil {
				return err
			}
			return devcontainer.Watch(cmd.Context(), gen, devcontainer.WatchOptions{
				Debounce: cfg.WatchDebounce,
				OnResult: func(res *devcontainer.Result, err error) {
					if err != nil {
						a.printf("✗ %v\n", err)
						return
					}
					a.summary(res, cfg.Output)
				},
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", devcontainer.DefaultDebounce, "quiet period before regenerating")
	return cmd
}
