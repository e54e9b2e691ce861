package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"athleteMindAPI/internal/notification"
	"athleteMindAPI/internal/progress"
)

// StreakReminder periodically warns athletes whose streak survives only
// through yesterday's check-in. One warning per user per day.
type StreakReminder struct {
	db            *pgxpool.Pool
	notifications *NotificationService
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

func NewStreakReminder(db *pgxpool.Pool, notificationService *NotificationService) *StreakReminder {
	return &StreakReminder{
		db:            db,
		notifications: notificationService,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the sweep loop. Hourly is frequent enough: the at-risk
// window is a whole day and the per-day dedup absorbs repeat sweeps.
func (r *StreakReminder) Start(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := r.sweep(ctx); err != nil {
					log.Printf("Streak risk sweep failed: %v", err)
				}
				cancel()
			case <-r.stopChan:
				return
			}
		}
	}()
}

func (r *StreakReminder) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

// sweep finds users whose most recent check-in falls in the last two days
// and warns the ones whose streak is at risk.
func (r *StreakReminder) sweep(ctx context.Context) error {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT user_id FROM check_ins WHERE date >= CURRENT_DATE - 1
	`)
	if err != nil {
		return fmt.Errorf("failed to list recent check-in users: %w", err)
	}
	defer rows.Close()

	var candidates []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan user id: %w", err)
		}
		candidates = append(candidates, id)
	}

	now := time.Now()
	for _, userID := range candidates {
		if err := r.remindUser(ctx, userID, now); err != nil {
			log.Printf("Streak risk reminder failed for user %s: %v", userID, err)
		}
	}
	return nil
}

func (r *StreakReminder) remindUser(ctx context.Context, userID uuid.UUID, now time.Time) error {
	dateRows, err := r.db.Query(ctx, `SELECT date FROM check_ins WHERE user_id = $1 ORDER BY date ASC`, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch check-in dates: %w", err)
	}
	defer dateRows.Close()

	var dates []time.Time
	for dateRows.Next() {
		var d time.Time
		if err := dateRows.Scan(&d); err != nil {
			return fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}

	if !progress.StreakAtRisk(dates, now) {
		return nil
	}
	streaks := progress.ComputeStreaks(dates, now)

	var alreadyWarned bool
	err = r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND created_at >= CURRENT_DATE
		)
	`, userID, notification.NotificationStreakRisk).Scan(&alreadyWarned)
	if err != nil {
		return fmt.Errorf("failed to check for prior warning: %w", err)
	}
	if alreadyWarned {
		return nil
	}

	return r.notifications.Notify(ctx, userID, notification.NotificationStreakRisk,
		"Your streak is at risk!",
		fmt.Sprintf("Check in today to keep your %d-day streak alive", streaks.CurrentStreak),
		map[string]any{"streak": streaks.CurrentStreak})
}
