package idempotency

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the slice of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// store can run standalone or inside the caller's transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists daily-task keys in daily_task_log. The unique index
// on (user_id, date, task_type) makes Mark naturally idempotent.
type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithTx binds the store to tx, so a mark commits or rolls back together
// with whatever grant it guards.
func (s *PostgresStore) WithTx(tx pgx.Tx) Store {
	return &PostgresStore{db: tx}
}

func (s *PostgresStore) Seen(ctx context.Context, key Key) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM daily_task_log
			WHERE user_id = $1 AND date = $2 AND task_type = $3
		)
	`, key.UserID, key.Date, key.TaskType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check daily task log: %w", err)
	}
	return exists, nil
}

// Mark records the key and reports whether this call created it.
func (s *PostgresStore) Mark(ctx context.Context, key Key) (bool, error) {
	result, err := s.db.Exec(ctx, `
		INSERT INTO daily_task_log (user_id, date, task_type, logged_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, date, task_type) DO NOTHING
	`, key.UserID, key.Date, key.TaskType)
	if err != nil {
		return false, fmt.Errorf("failed to mark daily task: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
