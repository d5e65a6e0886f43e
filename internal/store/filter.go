package store

import "strings"

// NoteFilter is the structured listing request. Every field is optional;
// blank strings and empty tag lists simply omit their condition. Conditions
// compose conjunctively, in the fixed order search, tags, conversation,
// color, start date, so the page query and the count query always agree.
type NoteFilter struct {
	Search       string
	Tags         []string
	Conversation string
	Color        string
	StartDate    int64
	SortField    string
	SortDir      string
	Page         int
	Limit        int
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// sortColumns is the allow-list for ORDER BY. Anything outside it falls back
// to the default sort; the listing endpoint stays resilient to stale or
// unknown sort keys sent by old UI state.
var sortColumns = map[string]string{
	"title":           "notes.title",
	"updated_at":      "notes.updated_at",
	"created_at":      "notes.created_at",
	"color_hex":       "notes.color_hex",
	"conversation_id": "notes.conversation_id",
}

func (f NoteFilter) page() int {
	if f.Page < 1 {
		return defaultPage
	}
	return f.Page
}

func (f NoteFilter) limit() int {
	if f.Limit < 1 {
		return defaultLimit
	}
	return f.Limit
}

// conditions compiles the filter into parameterized WHERE fragments plus the
// positional args, in placeholder order. User input never reaches the SQL
// text itself.
func (f NoteFilter) conditions() ([]string, []any) {
	var conds []string
	var args []any

	if search := strings.TrimSpace(f.Search); search != "" {
		conds = append(conds, "(lower(notes.title) LIKE ? OR lower(notes.content) LIKE ?)")
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}

	if tags := dedupeTags(f.Tags); len(tags) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(tags)), ",")
		conds = append(conds, `notes.id IN (
			SELECT note_tags.note_id FROM note_tags
			JOIN tags ON tags.id = note_tags.tag_id
			WHERE tags.name IN (`+placeholders+`))`)
		for _, tag := range tags {
			args = append(args, tag)
		}
	}

	if conversation := strings.TrimSpace(f.Conversation); conversation != "" {
		conds = append(conds, "notes.conversation_id = ?")
		args = append(args, conversation)
	}

	if color := strings.TrimSpace(f.Color); color != "" {
		conds = append(conds, "notes.color_hex = ?")
		args = append(args, color)
	}

	if f.StartDate > 0 {
		conds = append(conds, "notes.created_at >= ?")
		args = append(args, f.StartDate)
	}

	return conds, args
}

func (f NoteFilter) whereClause() (string, []any) {
	conds, args := f.conditions()
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderBy validates the requested sort against the allow-list. Invalid or missing
// values fall back to updated_at DESC.
func (f NoteFilter) orderBy() string {
	column, ok := sortColumns[f.SortField]
	if !ok {
		return " ORDER BY notes.updated_at DESC"
	}
	dir := strings.ToUpper(strings.TrimSpace(f.SortDir))
	if dir != "ASC" && dir != "DESC" {
		return " ORDER BY notes.updated_at DESC"
	}
	return " ORDER BY " + column + " " + dir
}

// dedupeTags drops blanks and duplicates while preserving first-seen order.
func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
