// ABOUTME: HTTP handlers for user lookup and self-service account deletion
// ABOUTME: Deletion is gated on the requester owning the target account

package server

import (
	"net/http"

	"github.com/lotus-studio/bookingd/internal/auth"
)

// handleGetUser handles GET /api/user/{id}.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := s.accounts.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleDeleteUser handles DELETE /api/user/{id}. Only the account owner may
// delete it; the ownership comparison is against the authenticated
// principal's email, not anything the client sends.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	principal := auth.MustFromContext(r.Context())

	if err := s.accounts.Delete(r.Context(), id, principal.Email); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
