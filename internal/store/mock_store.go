// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu           sync.RWMutex
	users        map[int64]*User
	usersByEmail map[string]int64
	teachers     map[int64]*Teacher
	sessions     map[int64]*Session
	rosters      map[int64]map[int64]time.Time // sessionID -> userID -> joined at
	nextID       int64
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:        make(map[int64]*User),
		usersByEmail: make(map[string]int64),
		teachers:     make(map[int64]*Teacher),
		sessions:     make(map[int64]*Session),
		rosters:      make(map[int64]map[int64]time.Time),
		nextID:       1,
	}
}

func (m *MockStore) allocID() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.usersByEmail[user.Email]; exists {
		return ErrEmailExists
	}

	now := time.Now().UTC()
	user.ID = m.allocID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	// Copy to avoid external modification
	u := *user
	m.users[u.ID] = &u
	m.usersByEmail[u.Email] = u.ID
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

// GetUserByEmail retrieves a user by email.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := *m.users[id]
	return &u, nil
}

// EmailExists reports whether a user with the given email exists.
func (m *MockStore) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.usersByEmail[email]
	return ok, nil
}

// DeleteUser deletes a user and removes them from all rosters.
func (m *MockStore) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}

	delete(m.usersByEmail, user.Email)
	delete(m.users, id)
	for _, roster := range m.rosters {
		delete(roster, id)
	}
	return nil
}

// ListUsers returns all users ordered by ID.
func (m *MockStore) ListUsers(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*User, 0, len(m.users))
	for _, user := range m.users {
		u := *user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// CountUsers returns the number of users.
func (m *MockStore) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// CreateTeacher stores a new teacher.
func (m *MockStore) CreateTeacher(ctx context.Context, teacher *Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	teacher.ID = m.allocID()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	t := *teacher
	m.teachers[t.ID] = &t
	return nil
}

// GetTeacher retrieves a teacher by ID.
func (m *MockStore) GetTeacher(ctx context.Context, id int64) (*Teacher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	teacher, ok := m.teachers[id]
	if !ok {
		return nil, ErrNotFound
	}
	t := *teacher
	return &t, nil
}

// ListTeachers returns all teachers ordered by ID.
func (m *MockStore) ListTeachers(ctx context.Context) ([]*Teacher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	teachers := make([]*Teacher, 0, len(m.teachers))
	for _, teacher := range m.teachers {
		t := *teacher
		teachers = append(teachers, &t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

// CreateSession stores a new session with its roster.
func (m *MockStore) CreateSession(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	session.ID = m.allocID()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	roster := make(map[int64]time.Time, len(session.Participants))
	for _, userID := range session.Participants {
		if _, dup := roster[userID]; dup {
			return ErrAlreadyParticipating
		}
		roster[userID] = now
	}

	sess := *session
	sess.Participants = append([]int64(nil), session.Participants...)
	m.sessions[sess.ID] = &sess
	m.rosters[sess.ID] = roster
	return nil
}

// GetSession retrieves a session and its roster by ID.
func (m *MockStore) GetSession(ctx context.Context, id int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	sess := *session
	sess.Participants = m.rosterSlice(id)
	return &sess, nil
}

// ListSessions returns all sessions with their rosters ordered by date.
func (m *MockStore) ListSessions(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for id, session := range m.sessions {
		sess := *session
		sess.Participants = m.rosterSlice(id)
		sessions = append(sessions, &sess)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })
	return sessions, nil
}

// UpdateSession overwrites a session's fields and replaces its roster.
func (m *MockStore) UpdateSession(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}

	now := time.Now().UTC()
	session.CreatedAt = existing.CreatedAt
	session.UpdatedAt = now

	roster := make(map[int64]time.Time, len(session.Participants))
	for _, userID := range session.Participants {
		roster[userID] = now
	}

	sess := *session
	sess.Participants = append([]int64(nil), session.Participants...)
	m.sessions[sess.ID] = &sess
	m.rosters[sess.ID] = roster
	return nil
}

// DeleteSession deletes a session and its roster.
func (m *MockStore) DeleteSession(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	delete(m.rosters, id)
	return nil
}

// AddParticipant adds a user to a session roster.
func (m *MockStore) AddParticipant(ctx context.Context, sessionID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	roster, ok := m.rosters[sessionID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := roster[userID]; exists {
		return ErrAlreadyParticipating
	}
	roster[userID] = time.Now().UTC()
	return nil
}

// RemoveParticipant removes a user from a session roster.
func (m *MockStore) RemoveParticipant(ctx context.Context, sessionID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	roster, ok := m.rosters[sessionID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := roster[userID]; !exists {
		return ErrNotParticipating
	}
	delete(roster, userID)
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// rosterSlice returns roster user IDs ordered by join time. Callers must hold the lock.
func (m *MockStore) rosterSlice(sessionID int64) []int64 {
	roster := m.rosters[sessionID]
	if len(roster) == 0 {
		return nil
	}
	userIDs := make([]int64, 0, len(roster))
	for userID := range roster {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool {
		ti, tj := roster[userIDs[i]], roster[userIDs[j]]
		if ti.Equal(tj) {
			return userIDs[i] < userIDs[j]
		}
		return ti.Before(tj)
	})
	return userIDs
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)
