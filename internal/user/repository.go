package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/tallyhq/tally/internal/apperror"
)

// MariaDB/MySQL error number for a unique key violation.
const mysqlErrDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a unique key violation.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// Repository defines the data access contract for user operations.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	NameExists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id int64) error
}

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new user row and fills in the generated id.
// Returns apperror.Conflict if the name is already taken; the service checks
// first, but two concurrent registrations can both pass that check and race
// to the unique key.
func (r *repository) Create(ctx context.Context, u *User) error {
	query := `INSERT INTO users (name, password_hash, role, created_at)
	          VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, u.Name, u.PasswordHash, u.Role, u.CreatedAt)
	if isDuplicateEntry(err) {
		return apperror.NewConflict("an account with this name already exists")
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	u.ID = id

	return nil
}

// FindByID retrieves a user by id.
// Returns apperror.NotFound if no user exists with this id.
func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, name, password_hash, role, created_at
	          FROM users WHERE id = ?`

	u := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return u, nil
}

// FindByName retrieves a user by name.
// Returns apperror.NotFound if no user exists with this name.
func (r *repository) FindByName(ctx context.Context, name string) (*User, error) {
	query := `SELECT id, name, password_hash, role, created_at
	          FROM users WHERE name = ?`

	u := &User{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&u.ID,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by name: %w", err)
	}

	return u, nil
}

// NameExists returns true if a user with the given name already exists.
// Used during registration to check for duplicates before hashing the password.
func (r *repository) NameExists(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE name = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking name existence: %w", err)
	}

	return exists, nil
}

// List returns all users ordered by creation date. Password hashes are
// deliberately excluded from the query -- list views never need them.
func (r *repository) List(ctx context.Context) ([]User, error) {
	query := `SELECT id, name, role, created_at
	          FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Delete removes a user row by id.
// Returns apperror.NotFound if no row was deleted.
func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}

	return nil
}
