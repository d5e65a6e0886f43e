package store

import (
	"context"
	"testing"
)

func TestConversationAggregates(t *testing.T) {
	st := newTestStore(t)
	setClock(st, 1000)
	ctx := context.Background()

	first := mustCreate(t, st, NoteInput{Title: "1", Content: "c", ConversationID: "beta"})
	mustCreate(t, st, NoteInput{Title: "2", Content: "c", ConversationID: "beta"})
	last, _, err := st.UpdateNoteContent(ctx, first.ID, "c2")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	mustCreate(t, st, NoteInput{Title: "3", Content: "c", ConversationID: "alpha"})

	conversations, err := st.ListConversations(ctx)
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %v", conversations)
	}
	if conversations[0].ConversationID != "alpha" || conversations[1].ConversationID != "beta" {
		t.Fatalf("conversations must be ordered by id, got %v", conversations)
	}

	beta := conversations[1]
	if beta.NoteCount != 2 {
		t.Errorf("beta count = %d, want 2", beta.NoteCount)
	}
	if beta.FirstCreatedAt != first.CreatedAt {
		t.Errorf("first_created_at = %d, want %d", beta.FirstCreatedAt, first.CreatedAt)
	}
	if beta.LastUpdatedAt != last.UpdatedAt {
		t.Errorf("last_updated_at = %d, want %d", beta.LastUpdatedAt, last.UpdatedAt)
	}
}

func TestConversationDisappearsWithLastNote(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	note := mustCreate(t, st, NoteInput{Title: "only", Content: "c", ConversationID: "gone"})
	if _, err := st.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	conversations, err := st.ListConversations(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(conversations) != 0 {
		t.Fatalf("conversation must vanish with its last note, got %v", conversations)
	}
}
