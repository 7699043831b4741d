// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides chat export functionality for ollamadesk.
// Exported files are derived output: they are regenerated from the JSON
// record and never read back.
package export

import (
	"fmt"
	"path/filepath"

	"github.com/jeranaias/ollamadesk/internal/storage"
	"github.com/jeranaias/ollamadesk/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for chat exporters.
type Exporter interface {
	// Export converts a record to the target format and returns the content.
	Export(record *storage.ChatRecord) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string
}

// =============================================================================
// FILE EXPORT
// =============================================================================

// ToFile exports a record into dir using the record's chat name as the
// base filename. Returns the written path.
func ToFile(e Exporter, record *storage.ChatRecord, dir string) (string, error) {
	if record == nil {
		return "", fmt.Errorf("record is nil")
	}
	name := record.ChatName
	if name == "" {
		name = "chat"
	}

	content, err := e.Export(record)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+e.FileExtension())
	if err := util.AtomicWriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
