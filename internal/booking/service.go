// ABOUTME: Booking service for session CRUD and roster membership rules
// ABOUTME: Resolves teacher/user relations and enforces the no-duplicate roster invariant

package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lotus-studio/bookingd/internal/store"
)

// Store is the subset of store.Store the booking service needs.
type Store interface {
	GetUser(ctx context.Context, id int64) (*store.User, error)

	GetTeacher(ctx context.Context, id int64) (*store.Teacher, error)
	ListTeachers(ctx context.Context) ([]*store.Teacher, error)

	CreateSession(ctx context.Context, session *store.Session) error
	GetSession(ctx context.Context, id int64) (*store.Session, error)
	ListSessions(ctx context.Context) ([]*store.Session, error)
	UpdateSession(ctx context.Context, session *store.Session) error
	DeleteSession(ctx context.Context, id int64) error

	AddParticipant(ctx context.Context, sessionID, userID int64) error
	RemoveParticipant(ctx context.Context, sessionID, userID int64) error
}

// Service implements session management and roster membership.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a booking service.
func NewService(st Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		logger: logger.With("component", "booking"),
	}
}

// Create validates the session's relations and persists it. The teacher must
// exist; every user on the initial roster must exist.
func (s *Service) Create(ctx context.Context, session *store.Session) (*store.Session, error) {
	if err := s.resolveRelations(ctx, session.TeacherID, session.Participants); err != nil {
		return nil, err
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("created session", "id", session.ID, "name", session.Name)
	return session, nil
}

// Update overwrites a session's name, date, description, and teacher. The
// roster is replaced only when incoming carries one (a nil roster keeps the
// existing participants). Returns store.ErrNotFound if the session, the
// teacher, or any roster user does not exist.
func (s *Service) Update(ctx context.Context, id int64, incoming *store.Session) (*store.Session, error) {
	existing, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = incoming.Name
	existing.Date = incoming.Date
	existing.Description = incoming.Description
	existing.TeacherID = incoming.TeacherID
	if incoming.Participants != nil {
		existing.Participants = incoming.Participants
	}

	if err := s.resolveRelations(ctx, existing.TeacherID, existing.Participants); err != nil {
		return nil, err
	}

	if err := s.store.UpdateSession(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("updated session", "id", id)
	return existing, nil
}

// Get returns the session with the given ID.
func (s *Service) Get(ctx context.Context, id int64) (*store.Session, error) {
	return s.store.GetSession(ctx, id)
}

// List returns all sessions.
func (s *Service) List(ctx context.Context) ([]*store.Session, error) {
	return s.store.ListSessions(ctx)
}

// Delete removes the session with the given ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted session", "id", id)
	return nil
}

// Participate adds a user to a session roster. The session and the user must
// both exist (store.ErrNotFound otherwise); a user already on the roster is
// store.ErrAlreadyParticipating. The insert itself is atomic at the store,
// so two concurrent joins for the same pair cannot both succeed.
func (s *Service) Participate(ctx context.Context, sessionID, userID int64) error {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.store.AddParticipant(ctx, sessionID, userID); err != nil {
		return err
	}

	s.logger.Info("user joined session", "session_id", sessionID, "user_id", userID)
	return nil
}

// Unparticipate removes a user from a session roster. The session must exist;
// the user's existence is not re-checked because the roster entry is already
// authoritative. A user not on the roster is store.ErrNotParticipating.
func (s *Service) Unparticipate(ctx context.Context, sessionID, userID int64) error {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return err
	}

	if err := s.store.RemoveParticipant(ctx, sessionID, userID); err != nil {
		return err
	}

	s.logger.Info("user left session", "session_id", sessionID, "user_id", userID)
	return nil
}

// GetTeacher returns the teacher with the given ID.
func (s *Service) GetTeacher(ctx context.Context, id int64) (*store.Teacher, error) {
	return s.store.GetTeacher(ctx, id)
}

// ListTeachers returns all teachers.
func (s *Service) ListTeachers(ctx context.Context) ([]*store.Teacher, error) {
	return s.store.ListTeachers(ctx)
}

// resolveRelations verifies that the teacher and all roster users exist.
func (s *Service) resolveRelations(ctx context.Context, teacherID int64, participants []int64) error {
	if _, err := s.store.GetTeacher(ctx, teacherID); err != nil {
		return fmt.Errorf("resolving teacher %d: %w", teacherID, err)
	}
	for _, userID := range participants {
		if _, err := s.store.GetUser(ctx, userID); err != nil {
			return fmt.Errorf("resolving user %d: %w", userID, err)
		}
	}
	return nil
}
