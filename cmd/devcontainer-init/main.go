// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// devcontainer-init generates devcontainer.json from a placeholder template
// and an optional .env overlay.
//
// Usage:
//
//	devcontainer-init [generate] [--dir .devcontainer]
//	devcontainer-init validate [--file devcontainer.json]
//	devcontainer-init vars [--format table|env|json]
//	devcontainer-init init-env [--force] [--interactive]
//	devcontainer-init watch [--debounce 200ms]
//	devcontainer-init version
//
// Exit codes:
//   - 0: success
//   - 1: generation or validation failure
//   - 2: usage error (unknown command or flag, bad flag value)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return exitOK
	}

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Error: %v\n\n", ue.err)
		if cmd == nil {
			cmd = root
		}
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailure
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "devcontainer-init",
		Short: "Generate devcontainer.json from a template and a .env overlay",
		Long: `devcontainer-init substitutes __NAME__ placeholders in devcontainer.template.json
with values from .env (falling back to built-in defaults), validates the
result and atomically writes devcontainer.json.

Running without a subcommand is the same as "generate".`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runGenerate,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	a.bindGlobalFlags(root)

	root.AddCommand(
		a.generateCmd(),
		a.validateCmd(),
		a.varsCmd(),
		a.initEnvCmd(),
		a.watchCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(a.stdout, "devcontainer-init %s\n", version.String())
			return nil
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("%s takes no arguments, got %q", cmd.CommandPath(), args)
	}
	return nil
}
