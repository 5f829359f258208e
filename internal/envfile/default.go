// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/vars"
	"github.com/google/renameio/v2"
)

// ErrExists is returned by WriteDefault when the target already exists and
// overwriting was not requested.
var ErrExists = errors.New("overlay file already exists")

const defaultHeader = `# Diamonds DevContainer Configuration
# Generated by devcontainer-init - customize as needed.
# Format: KEY=VALUE, one per line. Values are taken literally.
`

// DefaultContent renders an overlay that assigns every registered variable
// its default. values, when non-nil, replaces individual defaults (used by
// the interactive bootstrap).
func DefaultContent(reg *vars.Registry, values map[string]string) string {
	var b strings.Builder
	b.WriteString(defaultHeader)
	for _, d := range reg.Definitions() {
		b.WriteString("\n")
		if d.Description != "" {
			fmt.Fprintf(&b, "# %s\n", d.Description)
		}
		v := d.Default
		if override, ok := values[d.Name]; ok {
			v = override
		}
		fmt.Fprintf(&b, "%s=%s\n", d.Name, v)
	}
	return b.String()
}

// WriteDefault atomically writes content to path, creating parent
// directories. An existing file is only replaced when force is set;
// otherwise the complete file is hard-linked into place, which fails if
// path appeared in the meantime.
func WriteDefault(path, content string, force bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create overlay directory: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("write overlay %s: create pending file: %w", path, err)
	}
	defer func() {
		if cerr := pendingFile.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("write overlay %s: cleanup: %w", path, cerr)
		}
	}()

	if _, err := pendingFile.WriteString(content); err != nil {
		return fmt.Errorf("write overlay %s: %w", path, err)
	}
	if force {
		if err := pendingFile.CloseAtomicallyReplace(); err != nil {
			return fmt.Errorf("write overlay %s: %w", path, err)
		}
		return nil
	}
	if err := pendingFile.Sync(); err != nil {
		return fmt.Errorf("write overlay %s: sync: %w", path, err)
	}
	if err := os.Link(pendingFile.Name(), path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
		return fmt.Errorf("write overlay %s: %w", path, err)
	}
	return nil
}
