// ABOUTME: JSON request/response types and pure entity mapping for the HTTP API
// ABOUTME: Mapping is structural only; relation resolution lives in the services

package server

import (
	"time"

	"github.com/lotus-studio/bookingd/internal/store"
)

// LoginRequest is the JSON request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the JSON request body for POST /api/auth/register.
type SignupRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// JWTResponse is the JSON response for a successful login.
type JWTResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Admin     bool   `json:"admin"`
}

// MessageResponse is a plain acknowledgment or rejection body.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the JSON representation of a user. The password hash never
// appears here.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeacherResponse is the JSON representation of a teacher.
type TeacherResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionRequest is the JSON request body for creating or updating a session.
// Users carries roster user IDs; nil on update means "keep the roster".
type SessionRequest struct {
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	TeacherID   int64     `json:"teacher_id"`
	Users       []int64   `json:"users"`
}

// SessionResponse is the JSON representation of a session.
type SessionResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	TeacherID   int64     `json:"teacher_id"`
	Users       []int64   `json:"users"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toUserResponse(user *store.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Admin:     user.Admin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toTeacherResponse(teacher *store.Teacher) TeacherResponse {
	return TeacherResponse{
		ID:        teacher.ID,
		FirstName: teacher.FirstName,
		LastName:  teacher.LastName,
		CreatedAt: teacher.CreatedAt,
		UpdatedAt: teacher.UpdatedAt,
	}
}

func toSessionResponse(session *store.Session) SessionResponse {
	users := session.Participants
	if users == nil {
		users = []int64{}
	}
	return SessionResponse{
		ID:          session.ID,
		Name:        session.Name,
		Date:        session.Date,
		Description: session.Description,
		TeacherID:   session.TeacherID,
		Users:       users,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}

// toSession maps a SessionRequest to a session entity. Purely structural:
// the teacher and user IDs are carried over unresolved and validated by the
// booking service.
func toSession(req *SessionRequest) *store.Session {
	return &store.Session{
		Name:         req.Name,
		Date:         req.Date,
		Description:  req.Description,
		TeacherID:    req.TeacherID,
		Participants: req.Users,
	}
}
