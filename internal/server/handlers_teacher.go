// ABOUTME: HTTP handlers for teacher listing and detail

package server

import (
	"net/http"
)

// handleListTeachers handles GET /api/teacher.
func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := s.bookings.ListTeachers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	response := make([]TeacherResponse, 0, len(teachers))
	for _, teacher := range teachers {
		response = append(response, toTeacherResponse(teacher))
	}
	writeJSON(w, http.StatusOK, response)
}

// handleGetTeacher handles GET /api/teacher/{id}.
func (s *Server) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	teacher, err := s.bookings.GetTeacher(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherResponse(teacher))
}
