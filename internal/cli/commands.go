// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the interactive shell for ollamadesk.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/ollamadesk/internal/export"
	"github.com/jeranaias/ollamadesk/internal/model"
	"github.com/jeranaias/ollamadesk/internal/session"
	"github.com/jeranaias/ollamadesk/internal/storage"
	"github.com/jeranaias/ollamadesk/internal/util"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleCommand dispatches a slash command. Returns false to exit the REPL.
func (s *Shell) handleCommand(ctx context.Context, input string) bool {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/help", "/h":
		s.printHelp()
	case "/quit", "/q":
		return false
	case "/clear", "/c":
		s.deps.Store.Clear()
		fmt.Println(commandStyle.Render("conversation cleared"))
	case "/save":
		s.cmdSave(arg)
	case "/load":
		s.cmdLoad(arg)
	case "/rename":
		s.cmdRename(arg)
	case "/list", "/ls":
		s.cmdList()
	case "/search":
		s.cmdSearch(ctx, arg)
	case "/model":
		s.cmdModel(arg)
	case "/models":
		s.cmdModels(ctx)
	case "/param", "/p":
		s.cmdParam(arg)
	case "/system":
		s.cmdSystem(arg)
	case "/url":
		s.cmdURL(arg)
	case "/export":
		s.cmdExport(arg)
	case "/status", "/s":
		s.cmdStatus()
	default:
		fmt.Println(errorStyle.Render("unknown command: ") + cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	help := `
/save [name]       save the chat (timestamped name when omitted)
/load <path|name>  load a saved chat
/rename <name>     rename the current chat
/list              list saved chats
/search <text>     search saved chats by content
/clear             clear the conversation
/model [name]      show or switch the model
/models            list models installed on the server
/param [name val]  show or set a generation parameter
/system [text]     show, set, or "clear" the system prompt
/url <base>        change the Ollama endpoint
/export [md|txt]   export the current chat
/status            show session status
/quit              exit
`
	fmt.Print(infoStyle.Render(help))
}

// =============================================================================
// PERSISTENCE COMMANDS
// =============================================================================

func (s *Shell) cmdSave(name string) {
	path, err := s.deps.Store.Save(name)
	if err != nil {
		if errors.Is(err, session.ErrNothingToSave) {
			fmt.Println(warningStyle.Render("no conversation to save"))
			return
		}
		fmt.Println(errorStyle.Render("save failed: ") + err.Error())
		return
	}
	fmt.Println(commandStyle.Render("saved to " + path))
}

func (s *Shell) cmdLoad(arg string) {
	if arg == "" {
		fmt.Println(warningStyle.Render("usage: /load <path|name>"))
		return
	}

	path := arg
	if !strings.HasSuffix(path, ".json") {
		// Bare names resolve inside the history directory
		path = filepath.Join(s.deps.Store.HistoryDir(), arg+".json")
	}

	if err := s.deps.Store.Load(path); err != nil {
		fmt.Println(errorStyle.Render("load failed: ") + err.Error())
		return
	}

	snap := s.deps.Store.Snapshot()
	fmt.Println(commandStyle.Render(fmt.Sprintf("loaded %q (%d exchanges, model %s)",
		snap.ChatName, len(snap.Exchanges), snap.Model)))
}

func (s *Shell) cmdRename(name string) {
	if name == "" {
		fmt.Println(warningStyle.Render("usage: /rename <name>"))
		return
	}
	if _, err := s.deps.Store.Rename(name); err != nil {
		switch {
		case errors.Is(err, session.ErrNoCurrentChat):
			fmt.Println(warningStyle.Render("save the chat before renaming"))
		case errors.Is(err, storage.ErrNameExists):
			fmt.Println(warningStyle.Render("a chat with this name already exists"))
		default:
			fmt.Println(errorStyle.Render("rename failed: ") + err.Error())
		}
		return
	}
	fmt.Println(commandStyle.Render("renamed to " + name))
}

func (s *Shell) cmdList() {
	metas, err := s.deps.Store.ListChats()
	if err != nil {
		fmt.Println(errorStyle.Render("list failed: ") + err.Error())
		return
	}
	if len(metas) == 0 {
		fmt.Println(infoStyle.Render("no saved chats"))
		return
	}
	for _, m := range metas {
		line := fmt.Sprintf("%-24s %3d exchanges  %s",
			m.ChatName, m.ExchangeCount, util.TruncateWidth(m.Preview, 40))
		if !m.SavedAt.IsZero() {
			line += infoStyle.Render("  " + m.SavedAt.Format("2006-01-02 15:04"))
		}
		fmt.Println(line)
	}
}

func (s *Shell) cmdSearch(ctx context.Context, query string) {
	if query == "" {
		fmt.Println(warningStyle.Render("usage: /search <text>"))
		return
	}
	if s.deps.Catalog == nil {
		fmt.Println(warningStyle.Render("history search is unavailable"))
		return
	}

	results, err := s.deps.Catalog.Search(ctx, query, 20)
	if err != nil {
		fmt.Println(errorStyle.Render("search failed: ") + err.Error())
		return
	}
	if len(results) == 0 {
		fmt.Println(infoStyle.Render("no matches"))
		return
	}
	for _, r := range results {
		fmt.Printf("%s %s\n", commandStyle.Render(r.ChatName),
			infoStyle.Render(fmt.Sprintf("(exchange %d)", r.Position)))
		fmt.Println("  " + util.TruncateWidth(util.Flatten(r.UserText), 70))
	}
}

func (s *Shell) cmdExport(format string) {
	var exporter export.Exporter
	switch format {
	case "", "md", "markdown":
		exporter = export.NewMarkdownExporter()
	case "txt", "text":
		exporter = export.NewTextExporter()
	default:
		fmt.Println(warningStyle.Render("usage: /export [md|txt]"))
		return
	}

	snap := s.deps.Store.Snapshot()
	if len(snap.Exchanges) == 0 {
		fmt.Println(warningStyle.Render("no conversation to export"))
		return
	}

	record := &storage.ChatRecord{
		Model:        snap.Model,
		SystemPrompt: snap.SystemPrompt,
		Parameters:   snap.Parameters,
		ChatName:     snap.ChatName,
		Conversation: snap.Exchanges,
	}
	path, err := export.ToFile(exporter, record, s.deps.Store.HistoryDir())
	if err != nil {
		fmt.Println(errorStyle.Render("export failed: ") + err.Error())
		return
	}
	fmt.Println(commandStyle.Render("exported to " + path))
}

// =============================================================================
// SETTINGS COMMANDS
// =============================================================================

func (s *Shell) cmdModel(name string) {
	if name == "" {
		fmt.Println(infoStyle.Render("model: " + s.deps.Store.Snapshot().Model))
		return
	}
	if err := s.deps.Store.Configure("", name); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(commandStyle.Render("model set to " + name))
}

func (s *Shell) cmdModels(ctx context.Context) {
	models, err := s.deps.Ctrl.ListModels(ctx)
	if err != nil {
		fmt.Println(warningStyle.Render("could not list models: " + err.Error()))
		return
	}
	if len(models) == 0 {
		fmt.Println(infoStyle.Render("no models installed"))
		return
	}
	current := s.deps.Store.Snapshot().Model
	for _, m := range models {
		if m == current {
			fmt.Println(commandStyle.Render("* " + m))
		} else {
			fmt.Println("  " + m)
		}
	}
}

func (s *Shell) cmdParam(arg string) {
	if arg == "" {
		snap := s.deps.Store.Snapshot()
		names := make([]string, 0, len(snap.Parameters))
		for name := range snap.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-12s %v\n", name, snap.Parameters[name])
		}
		return
	}

	fields := strings.Fields(arg)
	if len(fields) != 2 {
		fmt.Println(warningStyle.Render("usage: /param <name> <value>"))
		return
	}

	if err := s.deps.Store.SetParameter(fields[0], fields[1]); err != nil {
		switch {
		case errors.Is(err, model.ErrUnknownParameter):
			fmt.Println(warningStyle.Render("unknown parameter; one of: " +
				strings.Join(model.ParameterNames(), ", ")))
		case errors.Is(err, model.ErrInvalidValue):
			fmt.Println(warningStyle.Render("value must be a finite number"))
		default:
			fmt.Println(errorStyle.Render(err.Error()))
		}
		return
	}
	fmt.Println(commandStyle.Render(fields[0] + " set to " + fields[1]))
}

func (s *Shell) cmdSystem(arg string) {
	switch arg {
	case "":
		prompt := s.deps.Store.Snapshot().SystemPrompt
		if prompt == "" {
			fmt.Println(infoStyle.Render("no system prompt"))
		} else {
			fmt.Println(infoStyle.Render("system prompt: " + prompt))
		}
	case "clear":
		s.deps.Store.SetSystemPrompt("")
		fmt.Println(commandStyle.Render("system prompt cleared"))
	default:
		s.deps.Store.SetSystemPrompt(arg)
		fmt.Println(commandStyle.Render("system prompt set"))
	}
}

func (s *Shell) cmdURL(arg string) {
	if arg == "" {
		fmt.Println(infoStyle.Render("endpoint: " + s.deps.Store.Snapshot().BaseURL))
		return
	}
	if err := s.deps.Store.Configure(arg, ""); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	fmt.Println(commandStyle.Render("endpoint set to " + s.deps.Store.Snapshot().BaseURL))
}

func (s *Shell) cmdStatus() {
	snap := s.deps.Store.Snapshot()

	fmt.Println(infoStyle.Render("model:     ") + snap.Model)
	fmt.Println(infoStyle.Render("endpoint:  ") + snap.BaseURL)
	name := snap.ChatName
	if name == "" {
		name = "(unsaved)"
	}
	fmt.Println(infoStyle.Render("chat:      ") + name)
	fmt.Println(infoStyle.Render("exchanges: ") + fmt.Sprint(len(snap.Exchanges)))
	if snap.SystemPrompt != "" {
		fmt.Println(infoStyle.Render("system:    ") + util.TruncateWidth(snap.SystemPrompt, 60))
	}
	if s.deps.Ctrl.Generating() {
		fmt.Println(warningStyle.Render("a generation is in flight"))
	}
}
