package store

import (
	"context"
	"reflect"
	"testing"
)

func tagByName(t *testing.T, tags []Tag, name string) Tag {
	t.Helper()
	for _, tag := range tags {
		if tag.Name == name {
			return tag
		}
	}
	t.Fatalf("tag %q not found in %v", name, tags)
	return Tag{}
}

func TestListTagsWithCounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, st, NoteInput{Title: "1", Content: "c", Tags: []string{"beta", "alpha"}})
	mustCreate(t, st, NoteInput{Title: "2", Content: "c", Tags: []string{"alpha"}})

	tags, err := st.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}
	if tags[0].Name != "alpha" || tags[1].Name != "beta" {
		t.Fatalf("tags must be ordered by name, got %v", tags)
	}
	if tags[0].NoteCount != 2 || tags[1].NoteCount != 1 {
		t.Fatalf("wrong counts: %v", tags)
	}
}

func TestTagHierarchyLevels(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, st, NoteInput{Title: "n", Content: "c", Tags: []string{"work", "projects", "deep"}})

	all, err := st.ListTags(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	work := tagByName(t, all, "work")
	projects := tagByName(t, all, "projects")
	deep := tagByName(t, all, "deep")

	if _, err := st.ReparentTag(ctx, projects.ID, &work.ID); err != nil {
		t.Fatalf("reparent projects: %v", err)
	}
	if _, err := st.ReparentTag(ctx, deep.ID, &projects.ID); err != nil {
		t.Fatalf("reparent deep: %v", err)
	}

	tree, err := st.TagHierarchy(ctx)
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	var got [][2]any
	for _, tag := range tree {
		got = append(got, [2]any{tag.Name, tag.Level})
	}
	want := [][2]any{{"work", 0}, {"projects", 1}, {"deep", 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("hierarchy = %v, want %v", got, want)
	}
}

func TestReparentRejectsSelfAndCycles(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, st, NoteInput{Title: "n", Content: "c", Tags: []string{"a", "b", "c"}})
	all, err := st.ListTags(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	a := tagByName(t, all, "a")
	b := tagByName(t, all, "b")
	c := tagByName(t, all, "c")

	if _, err := st.ReparentTag(ctx, a.ID, &a.ID); !isValidation(err) {
		t.Fatalf("self-parenting must be rejected, got %v", err)
	}

	// a -> b -> c, then closing c under a would form a cycle.
	if _, err := st.ReparentTag(ctx, b.ID, &a.ID); err != nil {
		t.Fatalf("reparent b: %v", err)
	}
	if _, err := st.ReparentTag(ctx, c.ID, &b.ID); err != nil {
		t.Fatalf("reparent c: %v", err)
	}
	if _, err := st.ReparentTag(ctx, a.ID, &c.ID); !isValidation(err) {
		t.Fatalf("cycle must be rejected, got %v", err)
	}

	// Moving back to the root is always allowed.
	if _, err := st.ReparentTag(ctx, b.ID, nil); err != nil {
		t.Fatalf("reparent to root: %v", err)
	}
}

func TestReparentNotFound(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.ReparentTag(context.Background(), 12345, nil); !isNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestTagCascadeOnNoteDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	note := mustCreate(t, st, NoteInput{Title: "n", Content: "c", Tags: []string{"a"}})
	if _, err := st.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tags, err := st.ListTags(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// The tag row survives; only the association cascades.
	a := tagByName(t, tags, "a")
	if a.NoteCount != 0 {
		t.Fatalf("count must drop to 0, got %d", a.NoteCount)
	}
}
