// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package devcontainer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	dclog "github.com/DiamondsLab/diamonds-devcontainer/internal/log"
)

// DefaultDebounce coalesces editor save bursts into one run.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Debounce time.Duration
	// OnResult, when set, is called after every run, including the
	// initial one.
	OnResult func(*Result, error)
}

// Watch runs gen once and then again whenever the overlay or template
// changes, until ctx is cancelled. Failed runs are logged and do not stop
// the watch. The directories are watched rather than the files so that
// atomic saves and a later-created .env are seen.
func Watch(ctx context.Context, gen *Generator, opts WatchOptions) error {
	logger := dclog.WithComponentFromContext(ctx, "watch")
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Debug().Err(err).Msg("close watcher")
		}
	}()

	targets := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, p := range []string{gen.opts.EnvFile, gen.opts.TemplatePath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Info().Str(dclog.FieldPath, dir).Msg("watching for changes")
	}

	runOnce := func() {
		res, err := gen.Run(ctx)
		if opts.OnResult != nil {
			opts.OnResult(res, err)
		}
	}
	runOnce()

	// Reset discards any stale tick, so the timer is never drained by hand.
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := targets[abs]; !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Debug().Str(dclog.FieldPath, abs).Str(dclog.FieldOp, event.Op.String()).Msg("input changed")
			timer.Reset(debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}
