package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"athleteMindAPI/internal/achievement"
	"athleteMindAPI/internal/idempotency"
	"athleteMindAPI/internal/leaderboard"
	"athleteMindAPI/internal/progress"
	"athleteMindAPI/internal/stats"
	"athleteMindAPI/internal/wellbeing"
)

// ProgressService owns everything derived from the check-in history and the
// counters: XP grants, levels, streaks, achievements and the leaderboard.
// XP is always applied as a server-side increment, never an overwrite, and
// unlocks are keyed by (user, achievement) so replays are no-ops.
type ProgressService struct {
	db      *pgxpool.Pool
	catalog *progress.Catalog
	tasks   idempotency.Store
}

func NewProgressService(db *pgxpool.Pool, catalog *progress.Catalog, tasks idempotency.Store) *ProgressService {
	return &ProgressService{db: db, catalog: catalog, tasks: tasks}
}

func (s *ProgressService) Catalog() *progress.Catalog {
	return s.catalog
}

// GrantDailyXP credits amount to the user once per (date, task type). The
// mark and the XP update commit together, so a failed grant leaves the key
// unmarked and a retry pays the full amount. The second return reports
// whether anything was actually granted.
func (s *ProgressService) GrantDailyXP(ctx context.Context, userID uuid.UUID, date time.Time, task idempotency.TaskType, amount int) (bool, error) {
	key := idempotency.Key{UserID: userID, Date: date, TaskType: task}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin grant: %w", err)
	}
	defer tx.Rollback(ctx)

	marked, err := s.tasks.WithTx(tx).Mark(ctx, key)
	if err != nil {
		return false, err
	}
	if !marked {
		return false, nil
	}

	_, err = tx.Exec(ctx, `UPDATE users SET xp = xp + $2, updated_at = NOW() WHERE id = $1`, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to grant xp: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit grant: %w", err)
	}
	return true, nil
}

// EvaluateAchievements runs the catalog against the current counters and
// persists any new unlocks. An unlock only pays its XP reward when the insert
// actually landed, so concurrent or replayed evaluations cannot double-pay.
func (s *ProgressService) EvaluateAchievements(ctx context.Context, userID uuid.UUID, counts progress.Counts) ([]progress.Unlock, error) {
	rows, err := s.db.Query(ctx, `SELECT achievement_id FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}
	defer rows.Close()

	prior := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement id: %w", err)
		}
		prior[id] = true
	}

	var applied []progress.Unlock
	for _, unlock := range s.catalog.Evaluate(counts, prior) {
		landed, err := s.applyUnlock(ctx, userID, unlock)
		if err != nil {
			return nil, err
		}
		if !landed {
			// Another evaluation got there first.
			continue
		}

		log.Printf("Achievement %s unlocked for user %s (+%d XP)", unlock.ID, userID, unlock.XPReward)
		applied = append(applied, unlock)
	}

	return applied, nil
}

// applyUnlock inserts the unlock row and pays its reward in one transaction,
// so a reward can neither be paid twice nor lost to a partial failure.
func (s *ProgressService) applyUnlock(ctx context.Context, userID uuid.UUID, unlock progress.Unlock) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin unlock: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, uuid.New(), userID, unlock.ID)
	if err != nil {
		return false, fmt.Errorf("failed to record unlock %s: %w", unlock.ID, err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	if unlock.XPReward > 0 {
		_, err = tx.Exec(ctx, `UPDATE users SET xp = xp + $2, updated_at = NOW() WHERE id = $1`, userID, unlock.XPReward)
		if err != nil {
			return false, fmt.Errorf("failed to grant unlock xp: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit unlock %s: %w", unlock.ID, err)
	}
	return true, nil
}

// Counts assembles the evaluator input from the stored counters. The streak
// comes in from the caller because it is already computed on submit.
func (s *ProgressService) Counts(ctx context.Context, userID uuid.UUID, currentStreak int) (progress.Counts, error) {
	counts := progress.Counts{CheckInStreak: currentStreak}

	query := `
	SELECT
		(SELECT COUNT(*) FROM exercise_completions WHERE user_id = $1),
		(SELECT COUNT(*) FROM resource_views WHERE user_id = $1),
		(SELECT COUNT(*) FROM education_views WHERE user_id = $1)
	`
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&counts.ExercisesCompleted,
		&counts.ResourcesViewed,
		&counts.EducationViewed,
	)
	if err != nil {
		return counts, fmt.Errorf("failed to load counters: %w", err)
	}

	return counts, nil
}

func (s *ProgressService) GetAchievements(ctx context.Context, clerkID string) ([]*achievement.AchievementWithStatus, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT achievement_id, unlocked_at FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unlocks: %w", err)
	}
	defer rows.Close()

	unlockedAt := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan unlock: %w", err)
		}
		unlockedAt[id] = at
	}

	// The catalog is the source of truth for definitions; the DB only holds
	// the per-user unlock state.
	var achievements []*achievement.AchievementWithStatus
	for _, def := range s.catalog.Definitions() {
		ach := &achievement.AchievementWithStatus{
			Achievement: achievement.Achievement{
				ID:       def.ID,
				Label:    def.Label,
				Group:    def.Group,
				Target:   def.Target,
				XPReward: def.XPReward,
			},
		}
		if at, ok := unlockedAt[def.ID]; ok {
			ach.Unlocked = true
			at := at
			ach.UnlockedAt = &at
		}
		achievements = append(achievements, ach)
	}

	return achievements, nil
}

func (s *ProgressService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	var userID uuid.UUID
	var totalXP int
	err := s.db.QueryRow(ctx, `SELECT id, xp FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &totalXP)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT date FROM check_ins WHERE user_id = $1 ORDER BY date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-in dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}

	now := time.Now()
	streaks := progress.ComputeStreaks(dates, now)

	userStats := &stats.UserStats{
		CurrentStreak: streaks.CurrentStreak,
		LongestStreak: streaks.LongestStreak,
		TotalCheckIns: streaks.TotalCheckIns,
		TotalXP:       totalXP,
		Level:         progress.LevelForXP(totalXP),
	}
	userStats.XPIntoLevel, userStats.XPBand = progress.LevelProgress(totalXP)

	counts, err := s.Counts(ctx, userID, streaks.CurrentStreak)
	if err != nil {
		return nil, err
	}
	userStats.ExercisesCompleted = counts.ExercisesCompleted
	userStats.ResourcesViewed = counts.ResourcesViewed
	userStats.EducationViewed = counts.EducationViewed

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_achievements WHERE user_id = $1`, userID).Scan(&userStats.AchievementsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count achievements: %w", err)
	}

	if err := s.fillWellbeing(ctx, userID, now, userStats); err != nil {
		return nil, err
	}

	return userStats, nil
}

// fillWellbeing derives today's score and the trailing 7-day average from
// the recent records. Scores are recomputed, not stored.
func (s *ProgressService) fillWellbeing(ctx context.Context, userID uuid.UUID, now time.Time, userStats *stats.UserStats) error {
	weekAgo := now.AddDate(0, 0, -7)

	rows, err := s.db.Query(ctx, `
		SELECT date, mood_rating, energy_level, stress_management, motivation,
		       sleep_hours, confidence, focus, recovery
		FROM check_ins
		WHERE user_id = $1 AND date > $2
		ORDER BY date ASC
	`, userID, weekAgo)
	if err != nil {
		return fmt.Errorf("failed to fetch recent check-ins: %w", err)
	}
	defer rows.Close()

	today := now.Format("2006-01-02")
	sum, count := 0, 0
	for rows.Next() {
		var date time.Time
		var m wellbeing.Metrics
		err := rows.Scan(&date, &m.Mood, &m.Energy, &m.StressManagement, &m.Motivation,
			&m.Sleep, &m.Confidence, &m.Focus, &m.Recovery)
		if err != nil {
			return fmt.Errorf("failed to scan check-in metrics: %w", err)
		}

		score := wellbeing.Score(m)
		sum += score
		count++

		if date.Format("2006-01-02") == today {
			userStats.TodayCheckedIn = true
			todayScore := score
			userStats.WellbeingToday = &todayScore
		}
	}

	if count > 0 {
		userStats.WellbeingAvg7Days = float64(sum) / float64(count)
	}
	return nil
}

func (s *ProgressService) GetGlobalLeaderboard(ctx context.Context, clerkID string) (*leaderboard.Leaderboard, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	query := `
	SELECT id, username, image_url, xp, current_streak,
	       RANK() OVER (ORDER BY xp DESC) as rank
	FROM users
	ORDER BY xp DESC
	LIMIT 100
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	board := &leaderboard.Leaderboard{}
	for rows.Next() {
		entry := &leaderboard.LeaderboardEntry{}
		err := rows.Scan(&entry.UserID, &entry.Username, &entry.ImageURL, &entry.XP, &entry.CurrentStreak, &entry.Rank)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Level = progress.LevelForXP(entry.XP)
		board.Entries = append(board.Entries, entry)
		if entry.UserID == userID {
			board.UserPosition = entry
		}
	}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&board.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if board.UserPosition == nil {
		positionQuery := `
		SELECT id, username, image_url, xp, current_streak, rank FROM (
			SELECT id, username, image_url, xp, current_streak,
			       RANK() OVER (ORDER BY xp DESC) as rank
			FROM users
		) ranked
		WHERE id = $1
		`
		entry := &leaderboard.LeaderboardEntry{}
		err := s.db.QueryRow(ctx, positionQuery, userID).Scan(
			&entry.UserID, &entry.Username, &entry.ImageURL, &entry.XP, &entry.CurrentStreak, &entry.Rank)
		if err != nil {
			return nil, fmt.Errorf("failed to get user position: %w", err)
		}
		entry.Level = progress.LevelForXP(entry.XP)
		board.UserPosition = entry
	}

	return board, nil
}
