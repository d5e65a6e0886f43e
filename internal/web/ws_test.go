package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"notesd/internal/config"
	"notesd/internal/store"
)

func TestWebSocketReceivesMutationEvents(t *testing.T) {
	ts, _ := newTestServer(t, config.Config{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	// Give the hub a moment to register the client before mutating.
	time.Sleep(50 * time.Millisecond)

	note := createNote(t, ts, map[string]any{
		"title":           "T",
		"content":         "C",
		"conversation_id": "conv1",
		"tags":            []string{"a"},
	})

	type wireEvent struct {
		Type    store.EventType `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	readEvent := func() wireEvent {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var ev wireEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v", err)
		}
		return ev
	}

	want := []store.EventType{store.EventNoteCreated, store.EventConversationCreated, store.EventTagCreated}
	for _, wantType := range want {
		if ev := readEvent(); ev.Type != wantType {
			t.Fatalf("event type = %s, want %s", ev.Type, wantType)
		}
	}

	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/notes/%d", ts.URL, note.ID), nil)
	resp.Body.Close()

	ev := readEvent()
	if ev.Type != store.EventNoteDeleted {
		t.Fatalf("event type = %s, want %s", ev.Type, store.EventNoteDeleted)
	}
	var deleted store.Note
	if err := json.Unmarshal(ev.Payload, &deleted); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if deleted.ID != note.ID {
		t.Fatalf("deleted id = %d, want %d", deleted.ID, note.ID)
	}
}
