// ABOUTME: Store interface and data types for bookingd persistence
// ABOUTME: Defines User, Teacher, Session structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user with an email that is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyParticipating is returned when adding a user to a session roster they are already on.
var ErrAlreadyParticipating = errors.New("user already participates in session")

// ErrNotParticipating is returned when removing a user from a session roster they are not on.
var ErrNotParticipating = errors.New("user does not participate in session")

// User represents a registered account. PasswordHash is a bcrypt hash and
// never leaves the store/service layers.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Teacher represents a session teacher.
type Teacher struct {
	ID        int64
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session represents a bookable session. Participants holds the user IDs on
// the roster; the store guarantees no ID appears twice.
type Session struct {
	ID           int64
	Name         string
	Date         time.Time
	Description  string
	TeacherID    int64
	Participants []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store defines the interface for user, teacher, and session persistence.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*User, error)
	CountUsers(ctx context.Context) (int, error)

	// Teachers
	CreateTeacher(ctx context.Context, teacher *Teacher) error
	GetTeacher(ctx context.Context, id int64) (*Teacher, error)
	ListTeachers(ctx context.Context) ([]*Teacher, error)

	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id int64) (*Session, error)
	ListSessions(ctx context.Context) ([]*Session, error)
	UpdateSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, id int64) error

	// Roster membership. Both operations are atomic: two concurrent calls
	// for the same (session, user) pair cannot both succeed.
	AddParticipant(ctx context.Context, sessionID, userID int64) error
	RemoveParticipant(ctx context.Context, sessionID, userID int64) error

	// Close releases any resources held by the store.
	Close() error
}
