package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tallyhq/tally/internal/apperror"
)

// Repository defines the data access contract for session operations.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByToken(ctx context.Context, token string) (*Session, error)

	// Authenticate flips the session identified by token to authenticated,
	// binding the user and copying the display name. The row is mutated in
	// place; the session id never changes.
	Authenticate(ctx context.Context, token string, userID int64, name string) error

	// Deauthenticate reverts the session to anonymous, unbinding the user.
	Deauthenticate(ctx context.Context, token string) error
}

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new session repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new session row and fills in the generated id.
func (r *repository) Create(ctx context.Context, s *Session) error {
	query := `INSERT INTO sessions (hash, is_auth, user_id, name, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, s.Hash, s.IsAuth, s.UserID, s.Name, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading session id: %w", err)
	}
	s.ID = id

	return nil
}

// FindByToken retrieves a session by its bearer token.
// Returns apperror.NotFound if no session matches.
func (r *repository) FindByToken(ctx context.Context, token string) (*Session, error) {
	query := `SELECT id, hash, is_auth, user_id, name, created_at
	          FROM sessions WHERE hash = ?`

	s := &Session{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&s.ID,
		&s.Hash,
		&s.IsAuth,
		&s.UserID,
		&s.Name,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying session by token: %w", err)
	}

	return s, nil
}

// Authenticate binds a user to the session row identified by token.
func (r *repository) Authenticate(ctx context.Context, token string, userID int64, name string) error {
	query := `UPDATE sessions SET is_auth = TRUE, user_id = ?, name = ? WHERE hash = ?`

	result, err := r.db.ExecContext(ctx, query, userID, name, token)
	if err != nil {
		return fmt.Errorf("authenticating session: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("session not found")
	}

	return nil
}

// Deauthenticate clears the user binding on the session row. The row itself
// stays -- the caller keeps the same session, back in its anonymous state.
func (r *repository) Deauthenticate(ctx context.Context, token string) error {
	query := `UPDATE sessions SET is_auth = FALSE, user_id = NULL WHERE hash = ?`

	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("deauthenticating session: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("session not found")
	}

	return nil
}
