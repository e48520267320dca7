// ABOUTME: HTTP handlers for login and registration
// ABOUTME: Token issuance endpoint and self-registration endpoint

package server

import (
	"encoding/json"
	"net/http"
)

// handleLogin handles POST /api/auth/login.
// On success returns a JWTResponse carrying the signed token and the
// resolved account's display fields.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, JWTResponse{
		Token:     token,
		Type:      "Bearer",
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Admin:     user.Admin,
	})
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if err := s.accounts.Register(r.Context(), req.Email, req.FirstName, req.LastName, req.Password); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "User registered successfully!")
}
