package web

import "net/http"

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.store.ListSections(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

type sectionBody struct {
	Name       string `json:"name"`
	OrderIndex int    `json:"order_index"`
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var body sectionBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	section, err := s.store.CreateSection(r.Context(), body.Name, body.OrderIndex)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, section)
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body sectionBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	section, err := s.store.UpdateSection(r.Context(), id, body.Name, body.OrderIndex)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteSection(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleTagHierarchy(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.TagHierarchy(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleTagParent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		ParentID *int64 `json:"parent_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	events, err := s.store.ReparentTag(r.Context(), id, body.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.publish(events)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.store.ListConversations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}
