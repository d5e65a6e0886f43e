package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "notes.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return st
}

// setClock makes timestamps deterministic and strictly increasing.
func setClock(st *Store, start int64) {
	next := start
	st.now = func() int64 {
		next++
		return next
	}
}

func mustCreate(t *testing.T, st *Store, in NoteInput) *Note {
	t.Helper()
	note, _, err := st.CreateNote(context.Background(), in)
	if err != nil {
		t.Fatalf("create note %q: %v", in.Title, err)
	}
	return note
}

func TestInitIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("second init: %v", err)
	}
}
