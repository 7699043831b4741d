// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat persistence for ollamadesk.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/ollamadesk/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// StoreError represents a chat-store error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrNameExists is returned by Rename when the target name is taken.
	ErrNameExists = &StoreError{Message: "a chat with this name already exists"}

	// ErrChatNotFound is returned when the named chat does not exist.
	ErrChatNotFound = &StoreError{Message: "chat not found"}

	// ErrInvalidName is returned for empty names or names with path separators.
	ErrInvalidName = &StoreError{Message: "invalid chat name"}
)

// LoadError wraps a failure to read or parse a chat record.
type LoadError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return "failed to load chat " + e.Path + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// CHAT META
// =============================================================================

// ChatMeta contains metadata for listing saved chats.
type ChatMeta struct {
	// Name is the file base name without extension
	Name string
	// Path is the full path to the .json record
	Path string
	// ChatName is the display name stored inside the record
	ChatName string
	// Model the chat ran against
	Model string
	// SavedAt is the parsed record timestamp (zero when unparseable)
	SavedAt time.Time
	// ExchangeCount is the number of exchanges in the conversation
	ExchangeCount int
	// Preview is the first user turn, flattened and truncated
	Preview string
}

// =============================================================================
// CHAT STORE
// =============================================================================

// ChatStore handles chat persistence in a single history directory.
type ChatStore struct {
	// Dir is the history directory holding the .json/.txt pairs
	Dir string
}

// NewChatStore creates a store rooted at dir, creating it if needed.
func NewChatStore(dir string) (*ChatStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ChatStore{Dir: dir}, nil
}

// Path returns the .json path for a chat name.
func (s *ChatStore) Path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// validName rejects empty names and names that would escape the directory.
func validName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists the record as <name>.json and regenerates <name>.txt.
// The record's ChatName and Timestamp are stamped before writing. Both
// files go through atomic writes; an existing pair under the same name is
// overwritten. Returns the .json path.
func (s *ChatStore) Save(name string, record *ChatRecord) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}

	now := time.Now()
	record.ChatName = name
	record.Timestamp = now.Format(time.RFC3339)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}

	jsonPath := s.Path(name)
	if err := util.AtomicWriteFile(jsonPath, data, 0o644); err != nil {
		return "", err
	}

	// The transcript is derived output; a failure here leaves the record
	// itself intact and is still reported.
	txtPath := filepath.Join(s.Dir, name+".txt")
	if err := util.AtomicWriteFile(txtPath, []byte(record.Transcript(now)), 0o644); err != nil {
		return jsonPath, err
	}

	return jsonPath, nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load reads the record at path. Failures come back as a *LoadError
// wrapping the cause. A record with no chat_name gets the filename stem.
func (s *ChatStore) Load(path string) (*ChatRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	var record ChatRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	if record.ChatName == "" {
		record.ChatName = stemOf(path)
	}
	return &record, nil
}

// LoadByName reads the record saved under name.
func (s *ChatStore) LoadByName(name string) (*ChatRecord, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	return s.Load(s.Path(name))
}

// stemOf returns the base filename without extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// RENAME OPERATIONS
// =============================================================================

// Rename moves the chat at oldPath to newName within the same directory.
// Fails with ErrNameExists when <newName>.json already exists, mutating
// nothing. Otherwise the .json is renamed, the .txt companion follows if
// present, and the chat_name field inside the record is rewritten.
// Returns the new .json path.
func (s *ChatStore) Rename(oldPath, newName string) (string, error) {
	if !validName(newName) {
		return "", ErrInvalidName
	}

	dir := filepath.Dir(oldPath)
	newJSONPath := filepath.Join(dir, newName+".json")

	if _, err := os.Stat(newJSONPath); err == nil {
		return "", ErrNameExists
	}
	if _, err := os.Stat(oldPath); err != nil {
		if os.IsNotExist(err) {
			return "", ErrChatNotFound
		}
		return "", err
	}

	if err := os.Rename(oldPath, newJSONPath); err != nil {
		return "", err
	}

	// The transcript is optional; a missing one is not an error.
	oldTxtPath := strings.TrimSuffix(oldPath, ".json") + ".txt"
	if _, err := os.Stat(oldTxtPath); err == nil {
		os.Rename(oldTxtPath, filepath.Join(dir, newName+".txt"))
	}

	record, err := s.Load(newJSONPath)
	if err != nil {
		return newJSONPath, err
	}
	record.ChatName = newName

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return newJSONPath, err
	}
	if err := util.AtomicWriteFile(newJSONPath, data, 0o644); err != nil {
		return newJSONPath, err
	}

	return newJSONPath, nil
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns metadata for every saved chat, most recent first.
// Corrupted records are skipped rather than failing the listing.
func (s *ChatStore) List() ([]ChatMeta, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ChatMeta{}, nil
		}
		return nil, err
	}

	var metas []ChatMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.Dir, entry.Name())
		record, err := s.Load(path)
		if err != nil {
			continue
		}

		metas = append(metas, ChatMeta{
			Name:          stemOf(path),
			Path:          path,
			ChatName:      record.ChatName,
			Model:         record.Model,
			SavedAt:       record.ParseTimestamp(),
			ExchangeCount: len(record.Conversation),
			Preview:       record.Preview(80),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].SavedAt.After(metas[j].SavedAt)
	})
	return metas, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes the named chat's .json and, when present, its .txt.
func (s *ChatStore) Delete(name string) error {
	if !validName(name) {
		return ErrInvalidName
	}

	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrChatNotFound
		}
		return err
	}
	os.Remove(filepath.Join(s.Dir, name+".txt"))
	return nil
}
