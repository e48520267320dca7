// ABOUTME: HTTP handlers for session CRUD and roster membership
// ABOUTME: Participate/unparticipate endpoints enforce the no-duplicate roster invariant

package server

import (
	"encoding/json"
	"net/http"
)

// handleListSessions handles GET /api/session.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.bookings.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, toSessionResponse(session))
	}
	writeJSON(w, http.StatusOK, response)
}

// handleGetSession handles GET /api/session/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// handleCreateSession handles POST /api/session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	session, err := s.bookings.Create(r.Context(), toSession(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// handleUpdateSession handles PUT /api/session/{id}.
func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeSessionRequest(w, r)
	if !ok {
		return
	}

	session, err := s.bookings.Update(r.Context(), id, toSession(req))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// handleDeleteSession handles DELETE /api/session/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.bookings.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleParticipate handles POST /api/session/{id}/participate/{userId}.
func (s *Server) handleParticipate(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := s.bookings.Participate(r.Context(), sessionID, userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleUnparticipate handles DELETE /api/session/{id}/participate/{userId}.
func (s *Server) handleUnparticipate(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := s.bookings.Unparticipate(r.Context(), sessionID, userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// decodeSessionRequest parses and validates a session body.
func decodeSessionRequest(w http.ResponseWriter, r *http.Request) (*SessionRequest, bool) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	if req.Name == "" || req.Date.IsZero() || req.Description == "" || req.TeacherID == 0 {
		writeMessage(w, http.StatusBadRequest, "Name, date, description, and teacher_id are required")
		return nil, false
	}
	return &req, true
}
