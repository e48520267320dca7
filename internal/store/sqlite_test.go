// ABOUTME: Tests for the SQLite store implementation
// ABOUTME: Covers CRUD, the unique email index, and atomic roster membership

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bookingd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, email string) *User {
	t.Helper()
	user := &User{
		Email:        email,
		FirstName:    "John",
		LastName:     "Doe",
		PasswordHash: "hash",
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedSession(t *testing.T, s *SQLiteStore, participants ...int64) *Session {
	t.Helper()
	ctx := context.Background()

	teacher := &Teacher{FirstName: "Helen", LastName: "Tran"}
	require.NoError(t, s.CreateTeacher(ctx, teacher))

	session := &Session{
		Name:         "Morning flow",
		Date:         time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second),
		Description:  "All levels",
		TeacherID:    teacher.ID,
		Participants: participants,
	}
	require.NoError(t, s.CreateSession(ctx, session))
	return session
}

func TestSQLite_UserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "a@b.com")
	require.NotZero(t, user.ID)

	byID, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", byID.Email)
	assert.False(t, byID.Admin)

	byEmail, err := s.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	exists, err := s.EmailExists(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.EmailExists(ctx, "other@b.com")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLite_UserNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteUser(ctx, 999), ErrNotFound)
}

func TestSQLite_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "a@b.com")

	err := s.CreateUser(ctx, &User{Email: "a@b.com", FirstName: "Jane", LastName: "Doe", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrEmailExists)

	// Exact, case-sensitive matching: a different casing is a different email
	err = s.CreateUser(ctx, &User{Email: "A@b.com", FirstName: "Jane", LastName: "Doe", PasswordHash: "x"})
	assert.NoError(t, err)
}

func TestSQLite_ListUsers(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "a@b.com")
	seedUser(t, s, "b@b.com")

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestSQLite_TeacherRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	teacher := &Teacher{FirstName: "Helen", LastName: "Tran"}
	require.NoError(t, s.CreateTeacher(ctx, teacher))
	require.NotZero(t, teacher.ID)

	got, err := s.GetTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "Helen", got.FirstName)

	_, err = s.GetTeacher(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	teachers, err := s.ListTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
}

func TestSQLite_SessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "a@b.com")
	session := seedSession(t, s, user.ID)
	require.NotZero(t, session.ID)

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning flow", got.Name)
	assert.Equal(t, session.Date.UTC(), got.Date.UTC())
	assert.Equal(t, []int64{user.ID}, got.Participants)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, []int64{user.ID}, sessions[0].Participants)
}

func TestSQLite_UpdateSessionReplacesRoster(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u1 := seedUser(t, s, "a@b.com")
	u2 := seedUser(t, s, "b@b.com")
	session := seedSession(t, s, u1.ID)

	session.Name = "Evening flow"
	session.Participants = []int64{u2.ID}
	require.NoError(t, s.UpdateSession(ctx, session))

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evening flow", got.Name)
	assert.Equal(t, []int64{u2.ID}, got.Participants)
}

func TestSQLite_UpdateMissingSession(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateSession(context.Background(), &Session{
		ID:          999,
		Name:        "x",
		Date:        time.Now(),
		Description: "x",
		TeacherID:   1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_AddParticipant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "a@b.com")
	session := seedSession(t, s)

	require.NoError(t, s.AddParticipant(ctx, session.ID, user.ID))

	// The primary key makes the second insert fail, not silently no-op
	err := s.AddParticipant(ctx, session.ID, user.ID)
	assert.ErrorIs(t, err, ErrAlreadyParticipating)

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{user.ID}, got.Participants)
}

func TestSQLite_RemoveParticipant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "a@b.com")
	session := seedSession(t, s, user.ID)

	require.NoError(t, s.RemoveParticipant(ctx, session.ID, user.ID))

	err := s.RemoveParticipant(ctx, session.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotParticipating)

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Participants)
}

func TestSQLite_DeleteSessionCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "a@b.com")
	session := seedSession(t, s, user.ID)

	require.NoError(t, s.DeleteSession(ctx, session.ID))

	_, err := s.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The user survives its roster rows
	_, err = s.GetUser(ctx, user.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.DeleteSession(ctx, session.ID), ErrNotFound)
}

func TestSQLite_DeleteUserCascadesRoster(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "a@b.com")
	session := seedSession(t, s, user.ID)

	require.NoError(t, s.DeleteUser(ctx, user.ID))

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Participants)
}
