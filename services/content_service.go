package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"athleteMindAPI/internal/idempotency"
	"athleteMindAPI/internal/notification"
	"athleteMindAPI/internal/progress"
)

// ContentService records guided-exercise completions and content views.
// Each task type pays XP at most once per day; the lifetime counters feed
// the achievement evaluator.
type ContentService struct {
	db            *pgxpool.Pool
	progress      *ProgressService
	notifications *NotificationService
}

func NewContentService(db *pgxpool.Pool, progressService *ProgressService, notificationService *NotificationService) *ContentService {
	return &ContentService{
		db:            db,
		progress:      progressService,
		notifications: notificationService,
	}
}

// ContentResult reports what one logged activity was worth.
type ContentResult struct {
	XPAwarded     int               `json:"xp_awarded"`
	TotalXP       int               `json:"total_xp"`
	Level         int               `json:"level"`
	NewlyUnlocked []progress.Unlock `json:"newly_unlocked"`
}

func (s *ContentService) CompleteExercise(ctx context.Context, clerkID string, exerciseSlug string) (*ContentResult, error) {
	return s.recordActivity(ctx, clerkID, exerciseSlug, "exercise_completions", "exercise_slug",
		idempotency.TaskExercise, progress.ExerciseXP)
}

func (s *ContentService) RecordResourceView(ctx context.Context, clerkID string, resourceSlug string) (*ContentResult, error) {
	return s.recordActivity(ctx, clerkID, resourceSlug, "resource_views", "resource_slug",
		idempotency.TaskResource, progress.ResourceXP)
}

func (s *ContentService) RecordEducationView(ctx context.Context, clerkID string, moduleSlug string) (*ContentResult, error) {
	return s.recordActivity(ctx, clerkID, moduleSlug, "education_views", "module_slug",
		idempotency.TaskEducation, progress.EducationXP)
}

func (s *ContentService) recordActivity(ctx context.Context, clerkID, slug, table, slugColumn string, task idempotency.TaskType, xp int) (*ContentResult, error) {
	if slug == "" {
		return nil, fmt.Errorf("content slug is required")
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Table and column names come from the fixed call sites above, never
	// from request input.
	query := fmt.Sprintf(`INSERT INTO %s (id, user_id, %s, created_at) VALUES ($1, $2, $3, NOW())`, table, slugColumn)
	_, err = s.db.Exec(ctx, query, uuid.New(), userID, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	now := time.Now()
	y, m, d := now.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	result := &ContentResult{}
	granted, err := s.progress.GrantDailyXP(ctx, userID, date, task, xp)
	if err != nil {
		return nil, err
	}
	if granted {
		result.XPAwarded = xp
	}

	var currentStreak int
	err = s.db.QueryRow(ctx, `SELECT current_streak FROM users WHERE id = $1`, userID).Scan(&currentStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}

	counts, err := s.progress.Counts(ctx, userID, currentStreak)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.progress.EvaluateAchievements(ctx, userID, counts)
	if err != nil {
		return nil, err
	}
	result.NewlyUnlocked = unlocks

	for _, unlock := range unlocks {
		err := s.notifications.Notify(ctx, userID, notification.NotificationAchievement,
			"Achievement unlocked!",
			fmt.Sprintf("%s (+%d XP)", unlock.Label, unlock.XPReward),
			map[string]any{"achievement_id": unlock.ID, "xp_reward": unlock.XPReward})
		if err != nil {
			log.Printf("Failed to send unlock notification for %s: %v", unlock.ID, err)
		}
	}

	err = s.db.QueryRow(ctx, `SELECT xp FROM users WHERE id = $1`, userID).Scan(&result.TotalXP)
	if err != nil {
		return nil, fmt.Errorf("failed to read xp: %w", err)
	}
	result.Level = progress.LevelForXP(result.TotalXP)

	return result, nil
}
