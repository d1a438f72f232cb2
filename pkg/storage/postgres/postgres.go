// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courier-chat/courier/pkg/api"
	"github.com/courier-chat/courier/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateUser inserts a new user with the given password hash.
func (s *Store) CreateUser(ctx context.Context, user *api.User, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		user.Username, passwordHash, user.FirstName, user.LastName, user.Phone, user.JoinAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUser retrieves a full user profile by username.
func (s *Store) GetUser(ctx context.Context, username string) (*api.User, error) {
	var u api.User
	err := s.pool.QueryRow(ctx, `
		SELECT username, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone, &u.JoinAt, &u.LastLoginAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// ListUsers returns basic info for all users, ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]api.UserSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, first_name, last_name
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := make([]api.UserSummary, 0)
	for rows.Next() {
		var u api.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// GetCredential returns the stored username/hash pair for login checks.
func (s *Store) GetCredential(ctx context.Context, username string) (*storage.Credential, error) {
	var cred storage.Credential
	err := s.pool.QueryRow(ctx, `
		SELECT username, password
		FROM users
		WHERE username = $1
	`, username).Scan(&cred.Username, &cred.PasswordHash)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying credential: %w", err)
	}
	return &cred, nil
}

// TouchLastLogin sets last_login_at to now. Each write simply sets "now";
// there is no read-modify-write race to guard.
func (s *Store) TouchLastLogin(ctx context.Context, username string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE users
		SET last_login_at = $1
		WHERE username = $2
	`, time.Now(), username)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MessagesFrom returns all messages sent by the user, oldest first.
func (s *Store) MessagesFrom(ctx context.Context, username string) ([]api.Message, error) {
	return s.selectMessages(ctx, "from_username", username)
}

// MessagesTo returns all messages addressed to the user, oldest first.
func (s *Store) MessagesTo(ctx context.Context, username string) ([]api.Message, error) {
	return s.selectMessages(ctx, "to_username", username)
}

func (s *Store) selectMessages(ctx context.Context, column, username string) ([]api.Message, error) {
	// column is one of two compile-time constants, never user input.
	query := fmt.Sprintf(`
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages
		WHERE %s = $1
		ORDER BY id
	`, column)

	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	messages := make([]api.Message, 0)
	for rows.Next() {
		var m api.Message
		if err := rows.Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

// CreateMessage inserts a message and returns it with its assigned ID.
func (s *Store) CreateMessage(ctx context.Context, from, to, body string) (*api.Message, error) {
	var m api.Message
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, from_username, to_username, body, sent_at, read_at
	`, from, to, body, time.Now()).Scan(
		&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("inserting message: %w", err)
	}
	return &m, nil
}

// GetMessage retrieves a message by ID.
func (s *Store) GetMessage(ctx context.Context, id int64) (*api.Message, error) {
	var m api.Message
	err := s.pool.QueryRow(ctx, `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages
		WHERE id = $1
	`, id).Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying message: %w", err)
	}
	return &m, nil
}

// MarkRead sets read_at if unset and returns the updated message.
// The COALESCE keeps the first timestamp on repeated calls.
func (s *Store) MarkRead(ctx context.Context, id int64) (*api.Message, error) {
	var m api.Message
	err := s.pool.QueryRow(ctx, `
		UPDATE messages
		SET read_at = COALESCE(read_at, $1)
		WHERE id = $2
		RETURNING id, from_username, to_username, body, sent_at, read_at
	`, time.Now(), id).Scan(
		&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &m.ReadAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("marking message read: %w", err)
	}
	return &m, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isUniqueViolation checks for a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for a PostgreSQL FK violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
