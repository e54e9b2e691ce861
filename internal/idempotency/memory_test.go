package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreMarkAndSeen(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	userID := uuid.New()
	date := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	key := Key{UserID: userID, Date: date, TaskType: TaskCheckIn}

	seen, err := store.Seen(ctx, key)
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if seen {
		t.Fatal("fresh key reported as seen")
	}

	created, err := store.Mark(ctx, key)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if !created {
		t.Fatal("first Mark did not report creating the key")
	}

	// The second mark must report that nothing was created, so the caller
	// knows not to grant again.
	created, err = store.Mark(ctx, key)
	if err != nil {
		t.Fatalf("Mark again: %v", err)
	}
	if created {
		t.Fatal("second Mark reported creating an existing key")
	}

	seen, err = store.Seen(ctx, key)
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if !seen {
		t.Fatal("marked key not reported as seen")
	}

	// Same day, different task type is a distinct key.
	other := Key{UserID: userID, Date: date, TaskType: TaskExercise}
	seen, err = store.Seen(ctx, other)
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if seen {
		t.Fatal("different task type collided with check-in key")
	}
}

func TestMemoryStoreWithTxSharesState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	key := Key{UserID: uuid.New(), Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), TaskType: TaskCheckIn}

	if _, err := store.WithTx(nil).Mark(ctx, key); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	seen, err := store.Seen(ctx, key)
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if !seen {
		t.Fatal("mark through WithTx view not visible on the base store")
	}
}
