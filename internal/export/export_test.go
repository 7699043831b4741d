// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ollamadesk/internal/model"
	"github.com/jeranaias/ollamadesk/internal/storage"
)

func testRecord() *storage.ChatRecord {
	return &storage.ChatRecord{
		Model:        "llama3.2",
		Timestamp:    time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC).Format(time.RFC3339),
		SystemPrompt: "be brief",
		ChatName:     "demo",
		Conversation: []model.Exchange{
			{User: "hi", Assistant: "hello"},
		},
	}
}

func TestMarkdownExport(t *testing.T) {
	content, err := NewMarkdownExporter().Export(testRecord())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	text := string(content)

	for _, want := range []string{
		"# demo",
		"- **Model**: llama3.2",
		"- **System prompt**: be brief",
		"### [1] User\n\nhi",
		"### [1] Assistant\n\nhello",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Markdown missing %q:\n%s", want, text)
		}
	}
}

func TestMarkdownExport_EmptyChat(t *testing.T) {
	record := testRecord()
	record.Conversation = nil

	if _, err := NewMarkdownExporter().Export(record); err == nil {
		t.Error("Expected error for empty chat")
	}
}

func TestTextExport_UsesRecordTimestamp(t *testing.T) {
	content, err := NewTextExporter().Export(testRecord())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(string(content), "Chat with Ollama (llama3.2) - 2025-06-01 12:30:00") {
		t.Errorf("Transcript header wrong:\n%s", content)
	}
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ToFile(NewMarkdownExporter(), testRecord(), dir)
	if err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}
	if path != filepath.Join(dir, "demo.md") {
		t.Errorf("Path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Exported file missing: %v", err)
	}
}
