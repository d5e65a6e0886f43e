// Package mcptool exposes the note store to MCP clients. It is the second
// transport over the same store and error taxonomy the REST API uses.
package mcptool

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"notesd/internal/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

type handler struct {
	store    *store.Store
	notifier store.Notifier
}

// New wires the MCP server with every note tool registered. notifier may be
// nil; the stdio binary has no push channel, so events are dropped there.
func New(st *store.Store, notifier store.Notifier) *server.MCPServer {
	s := server.NewMCPServer(
		"notesd",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	h := &handler{store: st, notifier: notifier}

	s.AddTool(mcp.NewTool("create-note",
		mcp.WithDescription("Create a note with optional tags and color."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title, at most 100 characters")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown note content")),
		mcp.WithString("conversationId", mcp.Description("Conversation grouping key, defaults to 'default'")),
		mcp.WithArray("tags", mcp.Description("Tag names to attach"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("color_hex", mcp.Description("7-character hex color like #ffe66d")),
	), h.createNote)

	s.AddTool(mcp.NewTool("update-note",
		mcp.WithDescription("Replace a note's content."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New markdown content")),
	), h.updateNote)

	s.AddTool(mcp.NewTool("delete-note",
		mcp.WithDescription("Delete a note by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), h.deleteNote)

	s.AddTool(mcp.NewTool("search-notes",
		mcp.WithDescription("Search notes by text, tags, and conversation."),
		mcp.WithString("query", mcp.Description("Substring matched against title and content")),
		mcp.WithArray("tags", mcp.Description("Match notes carrying any of these tags"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("conversationId", mcp.Description("Restrict to one conversation")),
	), h.searchNotes)

	s.AddTool(mcp.NewTool("list-conversations",
		mcp.WithDescription("List conversations with note counts and timestamps."),
	), h.listConversations)

	return s
}

func (h *handler) publish(events []store.Event) {
	if h.notifier == nil {
		return
	}
	for _, ev := range events {
		h.notifier.Publish(ev)
	}
}
