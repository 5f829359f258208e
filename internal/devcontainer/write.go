// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package devcontainer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	dclog "github.com/DiamondsLab/diamonds-devcontainer/internal/log"
)

// OutputMode is the permission used when the output file is created.
const OutputMode os.FileMode = 0o644

// WriteOutput replaces path with data atomically. Readers see either the
// previous file or the complete new one; on any error the previous file is
// left untouched.
func WriteOutput(ctx context.Context, path string, data []byte) error {
	logger := dclog.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	pendingFile, err := renameio.NewPendingFile(path,
		renameio.WithPermissions(OutputMode),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("create pending file: %w", err)}
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str(dclog.FieldOutputPath, path).Msg("cleanup pending output file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("write data: %w", err)}
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("atomic replace: %w", err)}
	}
	return nil
}
