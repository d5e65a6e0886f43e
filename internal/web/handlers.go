package web

import (
	"net/http"
	"strconv"
	"strings"

	"notesd/internal/markdown"
	"notesd/internal/store"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, &store.ValidationError{Msg: "invalid id: " + r.PathValue("id")}
	}
	return id, nil
}

// parseNoteFilter maps query params onto the filter. Numeric params that do
// not parse are treated as absent; the sort fallback lives in the builder.
func parseNoteFilter(r *http.Request) store.NoteFilter {
	q := r.URL.Query()
	f := store.NoteFilter{
		Search:       q.Get("search"),
		Conversation: q.Get("conversation"),
		Color:        q.Get("color"),
	}
	for _, raw := range q["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			f.Tags = append(f.Tags, tag)
		}
	}
	if v, err := strconv.ParseInt(q.Get("startDate"), 10, 64); err == nil {
		f.StartDate = v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = v
	}
	if sort := q.Get("sort"); sort != "" {
		field, dir, _ := strings.Cut(sort, ":")
		f.SortField = field
		f.SortDir = dir
	}
	return f
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	page, err := s.store.ListNotes(r.Context(), parseNoteFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	note, err := s.store.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type noteBody struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	ConversationID string   `json:"conversation_id"`
	ColorHex       string   `json:"color_hex"`
	SectionID      *int64   `json:"section_id"`
	Tags           []string `json:"tags"`
}

func (b noteBody) input() store.NoteInput {
	return store.NoteInput{
		Title:          b.Title,
		Content:        b.Content,
		ConversationID: b.ConversationID,
		ColorHex:       b.ColorHex,
		SectionID:      b.SectionID,
		Tags:           b.Tags,
	}
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var body noteBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	note, events, err := s.store.CreateNote(r.Context(), body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(events)
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body noteBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	note, events, err := s.store.UpdateNote(r.Context(), id, body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(events)
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := s.store.DeleteNote(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(events)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleNoteColor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		ColorHex string `json:"color_hex"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	note, events, err := s.store.SetNoteColor(r.Context(), id, body.ColorHex)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(events)
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleNoteSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		SectionID *int64 `json:"section_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	note, events, err := s.store.SetNoteSection(r.Context(), id, body.SectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(events)
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleBulkColor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NoteIDs  []int64 `json:"noteIds"`
		ColorHex string  `json:"color_hex"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	notes, events, err := s.store.SetNotesColor(r.Context(), body.NoteIDs, body.ColorHex)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(events)
	writeJSON(w, http.StatusOK, map[string]any{"updated": len(notes), "notes": notes})
}

func (s *Server) handleExportNotes(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.ExportMarkdown(r.Context(), r.URL.Query().Get("conversation"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="notes-export.md"`)
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Markdown string `json:"markdown"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	html, err := markdown.Render(body.Markdown)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}
