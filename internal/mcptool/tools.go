package mcptool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"notesd/internal/store"
)

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError reports a failure as an isError content block. The message comes
// straight from the store taxonomy, so MCP and REST clients read the same
// wording for the same failure.
func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func (h *handler) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return toolError(err)
	}
	content, err := req.RequireString("content")
	if err != nil {
		return toolError(err)
	}
	note, events, err := h.store.CreateNote(ctx, store.NoteInput{
		Title:          title,
		Content:        content,
		ConversationID: req.GetString("conversationId", ""),
		ColorHex:       req.GetString("color_hex", ""),
		Tags:           req.GetStringSlice("tags", nil),
	})
	if err != nil {
		return toolError(err)
	}
	h.publish(events)
	return jsonResult(note)
}

func (h *handler) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return toolError(err)
	}
	content, err := req.RequireString("content")
	if err != nil {
		return toolError(err)
	}
	note, events, err := h.store.UpdateNoteContent(ctx, int64(id), content)
	if err != nil {
		return toolError(err)
	}
	h.publish(events)
	return jsonResult(note)
}

func (h *handler) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return toolError(err)
	}
	events, err := h.store.DeleteNote(ctx, int64(id))
	if err != nil {
		return toolError(err)
	}
	h.publish(events)
	return mcp.NewToolResultText(fmt.Sprintf("note %d deleted", int64(id))), nil
}

func (h *handler) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := h.store.ListNotes(ctx, store.NoteFilter{
		Search:       req.GetString("query", ""),
		Tags:         req.GetStringSlice("tags", nil),
		Conversation: req.GetString("conversationId", ""),
	})
	if err != nil {
		return toolError(err)
	}
	return jsonResult(page)
}

func (h *handler) listConversations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversations, err := h.store.ListConversations(ctx)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(conversations)
}
