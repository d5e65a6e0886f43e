package store

import "context"

// Conversation is a derived grouping: it exists exactly while any note
// carries its id, and is never stored as a row of its own.
type Conversation struct {
	ConversationID string `json:"conversation_id"`
	NoteCount      int    `json:"note_count"`
	FirstCreatedAt int64  `json:"first_created_at"`
	LastUpdatedAt  int64  `json:"last_updated_at"`
}

func (s *Store) ListConversations(ctx context.Context) ([]Conversation, error) {
	rows, err := s.queryContext(ctx, `
		SELECT conversation_id, COUNT(*), MIN(created_at), MAX(updated_at)
		FROM notes
		GROUP BY conversation_id
		ORDER BY conversation_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ConversationID, &c.NoteCount, &c.FirstCreatedAt, &c.LastUpdatedAt); err != nil {
			return nil, classify(err)
		}
		conversations = append(conversations, c)
	}
	return conversations, classify(rows.Err())
}
