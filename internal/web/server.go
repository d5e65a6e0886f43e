package web

import (
	"net/http"

	"notesd/internal/config"
	"notesd/internal/store"
)

type Server struct {
	cfg   config.Config
	store *store.Store
	mux   *http.ServeMux
	hub   *Hub
	auth  *Auth
}

func NewServer(cfg config.Config, st *store.Store, hub *Hub) (*Server, error) {
	auth, err := newAuth(cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:   cfg,
		store: st,
		mux:   http.NewServeMux(),
		hub:   hub,
		auth:  auth,
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	if s.auth != nil {
		return s.auth.Middleware(s.mux)
	}
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/notes", s.handleListNotes)
	s.mux.HandleFunc("GET /api/notes/export", s.handleExportNotes)
	s.mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	s.mux.HandleFunc("GET /api/notes/{id}", s.handleGetNote)
	s.mux.HandleFunc("PUT /api/notes/{id}", s.handleUpdateNote)
	s.mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)
	s.mux.HandleFunc("PATCH /api/notes/{id}/color", s.handleNoteColor)
	s.mux.HandleFunc("PATCH /api/notes/{id}/section", s.handleNoteSection)
	s.mux.HandleFunc("PATCH /api/notes/bulk/color", s.handleBulkColor)

	s.mux.HandleFunc("GET /api/sections", s.handleListSections)
	s.mux.HandleFunc("POST /api/sections", s.handleCreateSection)
	s.mux.HandleFunc("PUT /api/sections/{id}", s.handleUpdateSection)
	s.mux.HandleFunc("DELETE /api/sections/{id}", s.handleDeleteSection)

	s.mux.HandleFunc("GET /api/tags", s.handleListTags)
	s.mux.HandleFunc("GET /api/tags/hierarchy", s.handleTagHierarchy)
	s.mux.HandleFunc("PATCH /api/tags/{id}/parent", s.handleTagParent)

	s.mux.HandleFunc("GET /api/conversations", s.handleListConversations)
	s.mux.HandleFunc("POST /api/render", s.handleRender)

	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.Handle("GET /", staticHandler())
}

// publish hands a mutation's events to the hub in their required order.
func (s *Server) publish(events []store.Event) {
	if s.hub == nil {
		return
	}
	for _, ev := range events {
		s.hub.Publish(ev)
	}
}
