package store

// Change events describe a mutation's effect for real-time delivery. A
// mutation returns every event it produced, already ordered: primary entity
// first, then the conversation aggregate, then one event per affected tag.
// Subscribers that recompute counts incrementally therefore always see
// aggregates that reflect the mutation.

type EventType string

const (
	EventNoteCreated         EventType = "note_created"
	EventNoteUpdated         EventType = "note_updated"
	EventNoteDeleted         EventType = "note_deleted"
	EventConversationCreated EventType = "conversation_created"
	EventConversationUpdated EventType = "conversation_updated"
	EventTagCreated          EventType = "tag_created"
	EventTagUpdated          EventType = "tag_updated"
)

type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// ConversationCount is the payload of conversation_* events.
type ConversationCount struct {
	ConversationID string `json:"conversation_id"`
	NoteCount      int    `json:"note_count"`
}

// TagCount is the payload of tag_* events.
type TagCount struct {
	Name      string `json:"name"`
	NoteCount int    `json:"note_count"`
}

// Notifier receives change events. Delivery mechanics are the caller's
// concern; the store only produces the events.
type Notifier interface {
	Publish(Event)
}

func noteEvent(t EventType, n *Note) Event {
	return Event{Type: t, Payload: n}
}

func conversationEvent(t EventType, id string, count int) Event {
	return Event{Type: t, Payload: ConversationCount{ConversationID: id, NoteCount: count}}
}

func tagEvent(t EventType, name string, count int) Event {
	return Event{Type: t, Payload: TagCount{Name: name, NoteCount: count}}
}
