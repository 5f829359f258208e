// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package devcontainer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()

	t.Run("creates file and parent directory", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "devcontainer.json")
		require.NoError(t, WriteOutput(context.Background(), path, []byte("{}\n")))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}\n", string(got))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, OutputMode, info.Mode().Perm()&OutputMode)
	})

	t.Run("replaces existing file", func(t *testing.T) {
		path := filepath.Join(dir, "devcontainer.json")
		require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o600))
		require.NoError(t, WriteOutput(context.Background(), path, []byte(`{"a":1}`)))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.ElementsMatch(t, []string{"devcontainer.json", "nested"}, names)
	})

	t.Run("directory in the way", func(t *testing.T) {
		path := filepath.Join(dir, "blocked")
		require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0o755))

		err := WriteOutput(context.Background(), path, []byte("{}"))
		var we *WriteError
		require.ErrorAs(t, err, &we)
		assert.Equal(t, path, we.Path)
	})
}
