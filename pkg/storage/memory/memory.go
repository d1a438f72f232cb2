// Package memory provides an in-memory implementation of storage.Store for
// testing and lightweight deployments. All data is lost when the process
// restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/courier-chat/courier/pkg/api"
	"github.com/courier-chat/courier/pkg/storage"
)

// userEntry holds a stored user and the credential hash.
type userEntry struct {
	user api.User
	hash string
}

// Store is an in-memory storage.Store.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*userEntry
	messages map[int64]*api.Message
	nextID   int64
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[string]*userEntry),
		messages: make(map[int64]*api.Message),
		nextID:   1,
	}
}

// CreateUser inserts a new user. Returns ErrConflict if the username is taken.
func (s *Store) CreateUser(ctx context.Context, user *api.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return storage.ErrConflict
	}

	u := *user
	s.users[user.Username] = &userEntry{user: u, hash: passwordHash}
	return nil
}

// GetUser returns the full profile, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, username string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := e.user
	return &u, nil
}

// ListUsers returns basic info for all users, ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]api.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.UserSummary, 0, len(s.users))
	for _, e := range s.users {
		out = append(out, api.UserSummary{
			Username:  e.user.Username,
			FirstName: e.user.FirstName,
			LastName:  e.user.LastName,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// GetCredential returns the stored credential, or ErrNotFound.
func (s *Store) GetCredential(ctx context.Context, username string) (*storage.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Credential{Username: username, PasswordHash: e.hash}, nil
}

// TouchLastLogin sets last_login_at to now.
func (s *Store) TouchLastLogin(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.users[username]
	if !ok {
		return storage.ErrNotFound
	}
	now := time.Now()
	e.user.LastLoginAt = &now
	return nil
}

// MessagesFrom returns all messages sent by the user, oldest first.
func (s *Store) MessagesFrom(ctx context.Context, username string) ([]api.Message, error) {
	return s.selectMessages(func(m *api.Message) bool { return m.FromUsername == username })
}

// MessagesTo returns all messages addressed to the user, oldest first.
func (s *Store) MessagesTo(ctx context.Context, username string) ([]api.Message, error) {
	return s.selectMessages(func(m *api.Message) bool { return m.ToUsername == username })
}

func (s *Store) selectMessages(match func(*api.Message) bool) ([]api.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Message, 0)
	for _, m := range s.messages {
		if match(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateMessage inserts a message. Both users must exist.
func (s *Store) CreateMessage(ctx context.Context, from, to, body string) (*api.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[from]; !ok {
		return nil, storage.ErrNotFound
	}
	if _, ok := s.users[to]; !ok {
		return nil, storage.ErrNotFound
	}

	m := &api.Message{
		ID:           s.nextID,
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       time.Now(),
	}
	s.nextID++
	s.messages[m.ID] = m

	out := *m
	return &out, nil
}

// GetMessage returns a message by ID, or ErrNotFound.
func (s *Store) GetMessage(ctx context.Context, id int64) (*api.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *m
	return &out, nil
}

// MarkRead sets read_at if unset and returns the updated message.
// Marking twice keeps the first timestamp.
func (s *Store) MarkRead(ctx context.Context, id int64) (*api.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if m.ReadAt == nil {
		now := time.Now()
		m.ReadAt = &now
	}
	out := *m
	return &out, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
