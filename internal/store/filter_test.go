package store

import (
	"reflect"
	"strings"
	"testing"
)

func TestConditionsEmptyFilter(t *testing.T) {
	conds, args := NoteFilter{}.conditions()
	if len(conds) != 0 || len(args) != 0 {
		t.Fatalf("expected no conditions, got %v with args %v", conds, args)
	}
	where, whereArgs := NoteFilter{}.whereClause()
	if where != "" || whereArgs != nil {
		t.Fatalf("expected empty where clause, got %q", where)
	}
}

func TestConditionsBlankStringsOmitted(t *testing.T) {
	f := NoteFilter{Search: "   ", Conversation: "\t", Color: " "}
	conds, args := f.conditions()
	if len(conds) != 0 || len(args) != 0 {
		t.Fatalf("whitespace-only values must be treated as absent, got %v", conds)
	}
}

func TestConditionsFixedOrder(t *testing.T) {
	f := NoteFilter{
		Search:       "hello",
		Tags:         []string{"a", "b"},
		Conversation: "conv1",
		Color:        "#ffe66d",
		StartDate:    1700000000,
	}
	conds, args := f.conditions()
	if len(conds) != 5 {
		t.Fatalf("expected 5 conditions, got %d: %v", len(conds), conds)
	}
	if !strings.Contains(conds[0], "LIKE") {
		t.Errorf("first condition must be the search match, got %q", conds[0])
	}
	if !strings.Contains(conds[1], "note_tags") {
		t.Errorf("second condition must be the tag membership, got %q", conds[1])
	}
	if conds[2] != "notes.conversation_id = ?" {
		t.Errorf("third condition must be conversation equality, got %q", conds[2])
	}
	if conds[3] != "notes.color_hex = ?" {
		t.Errorf("fourth condition must be color equality, got %q", conds[3])
	}
	if conds[4] != "notes.created_at >= ?" {
		t.Errorf("fifth condition must be the date threshold, got %q", conds[4])
	}

	want := []any{"%hello%", "%hello%", "a", "b", "conv1", "#ffe66d", int64(1700000000)}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args out of placeholder order: got %v want %v", args, want)
	}
}

func TestConditionsSearchIsLowercased(t *testing.T) {
	_, args := NoteFilter{Search: "HeLLo"}.conditions()
	if args[0] != "%hello%" || args[1] != "%hello%" {
		t.Fatalf("search pattern must be lowercased twice, got %v", args)
	}
}

func TestConditionsTagDedup(t *testing.T) {
	f := NoteFilter{Tags: []string{"a", "a", " b ", "", "b"}}
	conds, args := f.conditions()
	if len(conds) != 1 {
		t.Fatalf("expected one tag condition, got %v", conds)
	}
	if want := []any{"a", "b"}; !reflect.DeepEqual(args, want) {
		t.Fatalf("tags must be trimmed and deduplicated, got %v", args)
	}
	if got := strings.Count(conds[0], "?"); got != 2 {
		t.Fatalf("expected 2 placeholders in the IN list, got %d", got)
	}
}

func TestOrderByAllowList(t *testing.T) {
	cases := []struct {
		field, dir string
		want       string
	}{
		{"title", "ASC", " ORDER BY notes.title ASC"},
		{"title", "asc", " ORDER BY notes.title ASC"},
		{"created_at", "DESC", " ORDER BY notes.created_at DESC"},
		{"color_hex", "ASC", " ORDER BY notes.color_hex ASC"},
		{"conversation_id", "DESC", " ORDER BY notes.conversation_id DESC"},
		{"updated_at", "ASC", " ORDER BY notes.updated_at ASC"},
		{"nonexistent_field", "ASC", " ORDER BY notes.updated_at DESC"},
		{"title", "sideways", " ORDER BY notes.updated_at DESC"},
		{"", "", " ORDER BY notes.updated_at DESC"},
		{"title; DROP TABLE notes", "ASC", " ORDER BY notes.updated_at DESC"},
	}
	for _, tc := range cases {
		got := NoteFilter{SortField: tc.field, SortDir: tc.dir}.orderBy()
		if got != tc.want {
			t.Errorf("orderBy(%q, %q) = %q, want %q", tc.field, tc.dir, got, tc.want)
		}
	}
}

func TestPageAndLimitDefaults(t *testing.T) {
	f := NoteFilter{}
	if f.page() != 1 || f.limit() != 10 {
		t.Fatalf("defaults must be page=1 limit=10, got %d and %d", f.page(), f.limit())
	}
	f = NoteFilter{Page: -3, Limit: 0}
	if f.page() != 1 || f.limit() != 10 {
		t.Fatalf("out-of-range values must fall back, got %d and %d", f.page(), f.limit())
	}
	f = NoteFilter{Page: 4, Limit: 25}
	if f.page() != 4 || f.limit() != 25 {
		t.Fatalf("valid values must pass through, got %d and %d", f.page(), f.limit())
	}
}
