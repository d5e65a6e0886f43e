package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ExportMarkdown renders notes to a single markdown document, grouped under
// one heading per conversation. An empty conversation exports everything.
func (s *Store) ExportMarkdown(ctx context.Context, conversation string) (string, error) {
	conversation = strings.TrimSpace(conversation)
	query := "SELECT " + noteColumns + " FROM notes"
	var args []any
	if conversation != "" {
		query += " WHERE notes.conversation_id = ?"
		args = append(args, conversation)
	}
	query += " ORDER BY notes.conversation_id, notes.created_at"

	tx, start, err := s.beginTx(ctx, "export")
	if err != nil {
		return "", err
	}
	defer s.rollbackTx(tx, "export", start)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return "", classify(err)
	}
	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return "", classify(err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return "", classify(err)
	}
	rows.Close()

	if len(notes) > 0 {
		ids := make([]int64, len(notes))
		byID := make(map[int64]*Note, len(notes))
		for i := range notes {
			ids[i] = notes[i].ID
			byID[notes[i].ID] = &notes[i]
		}
		if err := attachTags(ctx, tx, ids, byID); err != nil {
			return "", err
		}
	}
	if err := s.commitTx(tx, "export", start); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Notes Export\n\n")
	fmt.Fprintf(&b, "Exported at %s\n", time.Unix(s.now(), 0).UTC().Format(time.RFC3339))

	current := ""
	for _, n := range notes {
		if n.ConversationID != current {
			current = n.ConversationID
			fmt.Fprintf(&b, "\n# Conversation: %s\n", current)
		}
		fmt.Fprintf(&b, "\n## %s\n\n", n.Title)
		if len(n.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(n.Tags, ", "))
		}
		if n.ColorHex != "" {
			fmt.Fprintf(&b, "Color: %s\n", n.ColorHex)
		}
		fmt.Fprintf(&b, "Created: %s\n\n", time.Unix(n.CreatedAt, 0).UTC().Format(time.RFC3339))
		b.WriteString(strings.TrimRight(n.Content, "\n"))
		b.WriteString("\n")
	}
	return b.String(), nil
}
