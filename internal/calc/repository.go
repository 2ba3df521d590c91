package calc

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository defines the data access contract for calculation records.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type Repository interface {
	Create(ctx context.Context, calc *Calculation) error
	ListBySession(ctx context.Context, sessionID int64) ([]Calculation, error)
	ListByUser(ctx context.Context, userID int64) ([]Calculation, error)
}

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new calculation repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new calculation row and fills in the generated id.
func (r *repository) Create(ctx context.Context, calc *Calculation) error {
	query := `INSERT INTO calculations (num1, num2, operator_id, result, session_id, user_id, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		calc.Num1,
		calc.Num2,
		calc.OperatorID,
		calc.Result,
		calc.SessionID,
		calc.UserID,
		calc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting calculation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading calculation id: %w", err)
	}
	calc.ID = id

	return nil
}

// ListBySession returns calculations recorded under one session, oldest first.
func (r *repository) ListBySession(ctx context.Context, sessionID int64) ([]Calculation, error) {
	query := `SELECT id, num1, num2, operator_id, result, session_id, user_id, created_at
	          FROM calculations WHERE session_id = ? ORDER BY id`

	return r.list(ctx, query, sessionID)
}

// ListByUser returns calculations tagged with one user, across all of that
// user's sessions, oldest first.
func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Calculation, error) {
	query := `SELECT id, num1, num2, operator_id, result, session_id, user_id, created_at
	          FROM calculations WHERE user_id = ? ORDER BY id`

	return r.list(ctx, query, userID)
}

func (r *repository) list(ctx context.Context, query string, arg int64) ([]Calculation, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing calculations: %w", err)
	}
	defer rows.Close()

	var calcs []Calculation
	for rows.Next() {
		var c Calculation
		if err := rows.Scan(
			&c.ID, &c.Num1, &c.Num2, &c.OperatorID, &c.Result,
			&c.SessionID, &c.UserID, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning calculation row: %w", err)
		}
		calcs = append(calcs, c)
	}

	return calcs, rows.Err()
}
