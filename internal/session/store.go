// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the session store for ollamadesk.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/ollamadesk/internal/config"
	"github.com/jeranaias/ollamadesk/internal/model"
	"github.com/jeranaias/ollamadesk/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

// SessionError represents a session-level error.
// It implements the error interface and can be compared using errors.Is.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrNothingToSave is returned by Save when the conversation is empty.
	ErrNothingToSave = &SessionError{Message: "no conversation to save"}

	// ErrNoCurrentChat is returned by Rename before the chat has been saved.
	ErrNoCurrentChat = &SessionError{Message: "chat has not been saved yet"}
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a consistent read of the session state, taken under the
// store's lock. The parameter map and exchange slice are copies.
type Snapshot struct {
	BaseURL      string
	Model        string
	SystemPrompt string
	Parameters   map[string]float64
	ChatName     string
	CurrentPath  string
	Exchanges    []model.Exchange
	Epoch        uint64
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Store owns the mutable session state behind a single mutex.
type Store struct {
	mu sync.Mutex

	settings     *config.Settings
	settingsPath string
	params       model.Parameters
	conversation *model.Conversation

	// Identity of the chat on disk; empty until saved or loaded.
	chatName    string
	currentPath string

	// epoch increments on Clear and Load. Appends carrying an older epoch
	// belong to a session that no longer exists and are dropped.
	epoch uint64

	chats  *storage.ChatStore
	logger *slog.Logger
}

// NewStore creates a session store over the given settings and chat store.
// The live parameter set starts from defaults overlaid with the settings
// file's values.
func NewStore(settings *config.Settings, settingsPath string, chats *storage.ChatStore, logger *slog.Logger) *Store {
	params := model.DefaultParameters()
	params.Merge(settings.Parameters)

	return &Store{
		settings:     settings,
		settingsPath: settingsPath,
		params:       params,
		conversation: model.NewConversation(),
		chats:        chats,
		logger:       logger,
	}
}

// persistSettings writes the settings file, syncing the live state into it
// first. Persistence failures are logged and swallowed: the in-memory
// mutation already succeeded and a read-only disk must not break the session.
func (s *Store) persistSettings() {
	s.settings.Parameters = s.params.Snapshot()
	if err := config.Save(s.settings, s.settingsPath); err != nil {
		s.logger.Warn("settings not persisted", "path", s.settingsPath, "error", err)
	}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Snapshot returns a consistent copy of the session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		BaseURL:      s.settings.Connection.BaseURL,
		Model:        s.settings.Connection.Model,
		SystemPrompt: s.settings.Session.SystemPrompt,
		Parameters:   s.params.Snapshot(),
		ChatName:     s.chatName,
		CurrentPath:  s.currentPath,
		Exchanges:    s.conversation.Exchanges(),
		Epoch:        s.epoch,
	}
}

// Epoch returns the current session epoch.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// IsEmpty reports whether the conversation has no exchanges.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.IsEmpty()
}

// =============================================================================
// CONFIGURATION OPERATIONS
// =============================================================================

// Configure updates the endpoint and model. An empty field keeps the
// current value. The base URL is validated before anything changes; on
// rejection the session is untouched.
func (s *Store) Configure(baseURL, modelName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if baseURL != "" {
		normalized, err := config.ValidateBaseURL(baseURL)
		if err != nil {
			return err
		}
		s.settings.Connection.BaseURL = normalized
	}
	if modelName != "" {
		s.settings.Connection.Model = modelName
	}

	s.persistSettings()
	return nil
}

// SetSystemPrompt replaces the system prompt. Empty clears it.
func (s *Store) SetSystemPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.Session.SystemPrompt = text
	s.persistSettings()
}

// SetParameter parses and applies one generation parameter. Unknown names
// and non-finite values are rejected with the prior value untouched; on
// success the settings file is updated.
func (s *Store) SetParameter(name, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.params.Set(name, raw); err != nil {
		return err
	}
	s.persistSettings()
	return nil
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// AppendExchange adds one exchange to the log unconditionally.
func (s *Store) AppendExchange(userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation.Append(userText, assistantText)
}

// AppendExchangeAt adds one exchange only if epoch is still current.
// Returns false when the append was dropped because the session was
// cleared or replaced while the exchange was being produced.
func (s *Store) AppendExchangeAt(epoch uint64, userText, assistantText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.logger.Info("stale exchange dropped",
			"have_epoch", epoch, "want_epoch", s.epoch)
		return false
	}
	s.conversation.Append(userText, assistantText)
	return true
}

// Clear empties the conversation and detaches from any file on disk.
// The model, endpoint, system prompt, and parameters are unaffected.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversation.Clear()
	s.chatName = ""
	s.currentPath = ""
	s.epoch++
}

// =============================================================================
// PERSISTENCE OPERATIONS
// =============================================================================

// Save writes the session to the chat store and returns the .json path.
// Name resolution: the given name, else the current chat name, else a
// timestamped chat_YYYYMMDD_HHMMSS. An empty conversation fails with
// ErrNothingToSave before touching disk.
func (s *Store) Save(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversation.IsEmpty() {
		return "", ErrNothingToSave
	}

	if name == "" {
		name = s.chatName
	}
	if name == "" {
		name = "chat_" + time.Now().Format("20060102_150405")
	}

	record := &storage.ChatRecord{
		Model:        s.settings.Connection.Model,
		SystemPrompt: s.settings.Session.SystemPrompt,
		Parameters:   s.params.Snapshot(),
		Conversation: s.conversation.Exchanges(),
	}

	path, err := s.chats.Save(name, record)
	if err != nil {
		return "", err
	}

	s.chatName = name
	s.currentPath = path
	s.logger.Info("chat saved", "name", name, "path", path,
		"exchanges", s.conversation.Len())
	return path, nil
}

// Load replaces the session with the record at path. The model, system
// prompt, and conversation are replaced wholesale (a missing model keeps
// the current one); parameters are merged so keys the record omits keep
// their current values. The endpoint is untouched. The epoch is bumped so
// in-flight generations against the old session cannot land.
func (s *Store) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.chats.Load(path)
	if err != nil {
		return err
	}

	if record.Model != "" {
		s.settings.Connection.Model = record.Model
	}
	s.settings.Session.SystemPrompt = record.SystemPrompt
	s.params.Merge(record.Parameters)
	s.conversation.Replace(record.Conversation)
	s.chatName = record.ChatName
	s.currentPath = path
	s.epoch++

	s.persistSettings()
	s.logger.Info("chat loaded", "name", s.chatName, "path", path,
		"exchanges", s.conversation.Len())
	return nil
}

// Rename renames the current chat on disk. Fails with ErrNoCurrentChat
// before the first save, and with storage.ErrNameExists when the target
// name is taken; in both cases nothing changes.
func (s *Store) Rename(newName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentPath == "" {
		return "", ErrNoCurrentChat
	}

	path, err := s.chats.Rename(s.currentPath, newName)
	if err != nil {
		return "", err
	}

	s.chatName = newName
	s.currentPath = path
	s.logger.Info("chat renamed", "name", newName, "path", path)
	return path, nil
}

// HistoryDir returns the directory saved chats live in.
func (s *Store) HistoryDir() string {
	return s.chats.Dir
}

// ListChats returns metadata for every saved chat, most recent first.
func (s *Store) ListChats() ([]storage.ChatMeta, error) {
	return s.chats.List()
}
