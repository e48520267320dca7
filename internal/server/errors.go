// ABOUTME: Boundary translation of service errors into HTTP response codes
// ABOUTME: The single place where NotFound/BadRequest/Unauthorized become 404/400/401

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lotus-studio/bookingd/internal/account"
	"github.com/lotus-studio/bookingd/internal/store"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage writes a MessageResponse body with the given status.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeServiceError translates a service error into its HTTP response. All
// rejections funnel through here so the mapping lives in one place:
//
//	store.ErrNotFound                  -> 404
//	duplicate email / roster misuse    -> 400 with a message
//	bad credentials / non-owner delete -> 401 with no distinguishing body
//	anything else                      -> 500, logged
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)

	case errors.Is(err, account.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "Error: Email is already taken!")

	case errors.Is(err, store.ErrAlreadyParticipating),
		errors.Is(err, store.ErrNotParticipating):
		writeMessage(w, http.StatusBadRequest, "Bad request")

	case errors.Is(err, account.ErrBadCredentials),
		errors.Is(err, account.ErrNotOwner):
		// Identical surface for both causes: the response must not reveal
		// whether the credentials or the ownership check failed.
		w.WriteHeader(http.StatusUnauthorized)

	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
