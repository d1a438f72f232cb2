package storage

import (
	"context"

	"github.com/courier-chat/courier/pkg/api"
)

// Credential is the stored username/hash pair consulted during login.
// The hash never travels further than the credential verifier.
type Credential struct {
	Username     string
	PasswordHash string
}

// UserStore persists user accounts and answers credential lookups.
type UserStore interface {
	// CreateUser inserts a new user with the given password hash.
	// Returns ErrConflict if the username is taken.
	CreateUser(ctx context.Context, user *api.User, passwordHash string) error

	// GetUser returns the full profile, or ErrNotFound.
	GetUser(ctx context.Context, username string) (*api.User, error)

	// ListUsers returns basic info for all users.
	ListUsers(ctx context.Context) ([]api.UserSummary, error)

	// GetCredential returns the stored credential, or ErrNotFound.
	GetCredential(ctx context.Context, username string) (*Credential, error)

	// TouchLastLogin sets last_login_at to now. Best-effort: callers treat
	// a failure as a logged side-issue, never as an authentication fault.
	TouchLastLogin(ctx context.Context, username string) error

	// MessagesFrom returns all messages sent by the user.
	MessagesFrom(ctx context.Context, username string) ([]api.Message, error)

	// MessagesTo returns all messages addressed to the user.
	MessagesTo(ctx context.Context, username string) ([]api.Message, error)
}

// MessageStore persists direct messages.
type MessageStore interface {
	// CreateMessage inserts a message and returns it with its assigned ID
	// and sent_at timestamp. Returns ErrNotFound if either user is unknown.
	CreateMessage(ctx context.Context, from, to, body string) (*api.Message, error)

	// GetMessage returns a message by ID, or ErrNotFound.
	GetMessage(ctx context.Context, id int64) (*api.Message, error)

	// MarkRead sets read_at to now if not already set and returns the
	// updated message. Marking an already-read message is a no-op that
	// returns the existing read_at.
	MarkRead(ctx context.Context, id int64) (*api.Message, error)
}

// Store is the full persistence surface wired by cmd/server.
type Store interface {
	UserStore
	MessageStore

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}
