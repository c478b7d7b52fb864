package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/chatstore"
	"github.com/untoldecay/flowai/internal/classify"
	"github.com/untoldecay/flowai/internal/config"
	"github.com/untoldecay/flowai/internal/debug"
	"github.com/untoldecay/flowai/internal/index"
	"github.com/untoldecay/flowai/internal/persist"
	"github.com/untoldecay/flowai/internal/taskstore"
	"github.com/untoldecay/flowai/internal/ticketstore"
	"github.com/untoldecay/flowai/internal/types"
	"github.com/untoldecay/flowai/internal/workspace"
)

const indexFile = "index.db"

// resolveDataDir resolves the workspace directory or exits with a hint to
// run `flow init`.
func resolveDataDir() string {
	dir, err := workspace.DataDir(dataDirArg)
	if err != nil {
		FatalErrorRespectJSON("%v", err)
	}
	return dir
}

// loadTemplates returns the SOP template catalog, merged with
// templates.toml from the data dir when present.
func loadTemplates(dataDir string) []types.SOPTemplate {
	path := config.GetString("task.templates-file")
	if path == "" {
		path = filepath.Join(dataDir, "templates.toml")
	}
	if _, err := os.Stat(path); err != nil {
		return catalog.SOPTemplates()
	}
	templates, err := catalog.LoadSOPTemplates(path)
	if err != nil {
		FatalErrorRespectJSON("loading %s: %v", path, err)
	}
	return templates
}

func openTaskStore() (*taskstore.Store, string) {
	dataDir := resolveDataDir()
	s, err := taskstore.Open(filepath.Join(dataDir, persist.TasksFile),
		catalog.TeamMembers(), loadTemplates(dataDir))
	if err != nil {
		FatalErrorRespectJSON("opening task store: %v", err)
	}
	return s, dataDir
}

func openTicketStore() (*ticketstore.Store, string) {
	dataDir := resolveDataDir()
	s, err := ticketstore.Open(filepath.Join(dataDir, persist.TicketsFile))
	if err != nil {
		FatalErrorRespectJSON("opening ticket store: %v", err)
	}
	return s, dataDir
}

func openChatStore() *chatstore.Store {
	return chatstore.New(config.GetString("chat.current-user"))
}

// newAnalyzer picks the classifier engine. useAI comes from the --ai flag
// or the ai.mode config key; without a usable API key it falls back to the
// rule tables.
func newAnalyzer(useAI bool, templates []types.SOPTemplate) classify.Analyzer {
	if !useAI {
		useAI = config.GetString("ai.mode") == "claude"
	}
	if useAI {
		claude, err := classify.NewClaudeAnalyzer("", config.GetString("ai.model"), templates)
		if err == nil {
			return claude
		}
		debug.Logf("claude analyzer unavailable (%v); falling back to rules\n", err)
	}
	return classify.NewRuleAnalyzer(templates)
}

// refreshIndex rebuilds the derived search index from both snapshots.
// Index failures are logged, never fatal: the JSON snapshots are the source
// of truth and the index is rebuilt on the next search.
func refreshIndex(ctx context.Context, dataDir string) {
	if !config.GetBool("index.enabled") {
		return
	}

	var tasks []types.Task
	if snap, err := persist.LoadTasks(filepath.Join(dataDir, persist.TasksFile)); err == nil && snap != nil {
		tasks = snap.Tasks
	}
	var tickets []types.Ticket
	if snap, err := persist.LoadTickets(filepath.Join(dataDir, persist.TicketsFile)); err == nil && snap != nil {
		tickets = snap.Tickets
	}

	ix, err := index.Open(ctx, filepath.Join(dataDir, indexFile))
	if err != nil {
		debug.Logf("opening search index: %v\n", err)
		return
	}
	defer ix.Close()
	if err := ix.Rebuild(ctx, tasks, tickets); err != nil {
		debug.Logf("rebuilding search index: %v\n", err)
	}
}

// memberName resolves a roster id to a display name, falling back to the
// raw id for unknown members.
func memberName(id string) string {
	if m, ok := catalog.MemberByID(id); ok {
		return m.Name
	}
	return id
}
