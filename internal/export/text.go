// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"time"

	"github.com/jeranaias/ollamadesk/internal/storage"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter exports chats in the plain transcript format, the same
// rendering the store writes as the .txt companion on save.
type TextExporter struct{}

// NewTextExporter creates a plain-text transcript exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export converts a record to the transcript format. The header carries
// the record's saved time when it parses, otherwise the export time.
func (e *TextExporter) Export(record *storage.ChatRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}

	savedAt := record.ParseTimestamp()
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	return []byte(record.Transcript(savedAt)), nil
}

// FileExtension returns ".txt".
func (e *TextExporter) FileExtension() string {
	return ".txt"
}
