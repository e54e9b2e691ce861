// Package idempotency guards the once-per-day XP grants. The key is a typed
// (user, date, task) tuple rather than an interpolated string, so the same
// logic runs against the in-memory store in tests and Postgres in production.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TaskType string

const (
	TaskCheckIn   TaskType = "checkin"
	TaskExercise  TaskType = "exercise"
	TaskResource  TaskType = "resource"
	TaskEducation TaskType = "education"
)

type Key struct {
	UserID   uuid.UUID
	Date     time.Time
	TaskType TaskType
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.UserID, k.Date.Format("2006-01-02"), k.TaskType)
}

// Store records which daily tasks have already been credited. Mark reports
// whether the key was newly recorded, so the caller can grant exactly when
// the mark landed. WithTx returns a view of the store bound to the caller's
// transaction; the mark then commits or rolls back with the grant it guards.
type Store interface {
	Seen(ctx context.Context, key Key) (bool, error)
	Mark(ctx context.Context, key Key) (bool, error)
	WithTx(tx pgx.Tx) Store
}
