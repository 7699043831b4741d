// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/ollamadesk/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports chats to Markdown format.
type MarkdownExporter struct {
	// IncludeMetadata includes the model, timestamp, and parameter table.
	IncludeMetadata bool
}

// NewMarkdownExporter creates a Markdown exporter with metadata enabled.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{IncludeMetadata: true}
}

// Export converts a record to Markdown.
func (e *MarkdownExporter) Export(record *storage.ChatRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}
	if len(record.Conversation) == 0 {
		return nil, fmt.Errorf("chat has no exchanges")
	}

	var sb strings.Builder

	title := record.ChatName
	if title == "" {
		title = "Chat"
	}
	sb.WriteString("# " + title + "\n\n")

	if e.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("- **Model**: %s\n", record.Model))
		if record.Timestamp != "" {
			sb.WriteString(fmt.Sprintf("- **Saved**: %s\n", record.Timestamp))
		}
		sb.WriteString(fmt.Sprintf("- **Exchanges**: %d\n", len(record.Conversation)))
		if record.SystemPrompt != "" {
			sb.WriteString(fmt.Sprintf("- **System prompt**: %s\n", record.SystemPrompt))
		}
		sb.WriteString("\n---\n\n")
	}

	for i, exchange := range record.Conversation {
		sb.WriteString(fmt.Sprintf("### [%d] User\n\n%s\n\n", i+1, exchange.User))
		sb.WriteString(fmt.Sprintf("### [%d] Assistant\n\n%s\n\n", i+1, exchange.Assistant))
		sb.WriteString("---\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
