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

	"athleteMindAPI/internal/calendar"
	"athleteMindAPI/internal/checkin"
	"athleteMindAPI/internal/idempotency"
	"athleteMindAPI/internal/notification"
	"athleteMindAPI/internal/progress"
	"athleteMindAPI/internal/wellbeing"
)

// streakMilestones are the streak lengths worth a push notification.
var streakMilestones = map[int]bool{7: true, 30: true, 100: true}

type CheckInService struct {
	db            *pgxpool.Pool
	progress      *ProgressService
	notifications *NotificationService
}

func NewCheckInService(db *pgxpool.Pool, progressService *ProgressService, notificationService *NotificationService) *CheckInService {
	return &CheckInService{
		db:            db,
		progress:      progressService,
		notifications: notificationService,
	}
}

func parseDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

// SubmitCheckIn upserts today's record and runs the whole derivation chain:
// wellbeing score, recommendations, streaks, check-in XP (once per day) and
// achievement evaluation. A same-day resubmission updates the record and
// re-derives the scores but never pays XP twice.
func (s *CheckInService) SubmitCheckIn(ctx context.Context, clerkID string, req *checkin.SubmitRequest) (*checkin.SubmitResult, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	now := time.Now()
	date, err := parseDate(req.Date, now)
	if err != nil {
		return nil, err
	}

	metrics := req.Metrics()

	// The legacy stress field is canonicalized to stress management on write;
	// only the higher=better orientation is ever stored.
	var stressMgmt *float64
	if metrics.StressManagement != nil || metrics.Stress != nil {
		v := metrics.EffectiveStressManagement()
		stressMgmt = &v
	}

	query := `
        INSERT INTO check_ins (id, user_id, date, mood_rating, energy_level, stress_management,
                               motivation, sleep_hours, confidence, focus, recovery, note,
                               created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
        ON CONFLICT (user_id, date)
        DO UPDATE SET
            mood_rating = $4,
            energy_level = $5,
            stress_management = $6,
            motivation = $7,
            sleep_hours = $8,
            confidence = $9,
            focus = $10,
            recovery = $11,
            note = $12,
            updated_at = NOW()
        RETURNING id, user_id, date, mood_rating, energy_level, stress_management,
                  motivation, sleep_hours, confidence, focus, recovery, note,
                  created_at, updated_at
    `

	record := &checkin.CheckIn{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), userID, date, metrics.Mood, metrics.Energy, stressMgmt,
		metrics.Motivation, metrics.Sleep, metrics.Confidence, metrics.Focus,
		metrics.Recovery, req.NoteText(),
	).Scan(
		&record.ID, &record.UserID, &record.Date, &record.MoodRating, &record.EnergyLevel,
		&record.StressManagement, &record.Motivation, &record.SleepHours, &record.Confidence,
		&record.Focus, &record.Recovery, &record.Note, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}

	record.WellbeingScore = wellbeing.Score(metrics)

	result := &checkin.SubmitResult{
		CheckIn:         record,
		WellbeingScore:  record.WellbeingScore,
		Recommendations: wellbeing.Recommend(metrics),
	}

	dates, err := s.checkInDates(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Streaks = progress.ComputeStreaks(dates, now)

	// Streak columns feed the leaderboard; the history stays the source of truth.
	_, err = s.db.Exec(ctx, `UPDATE users SET current_streak = $2, longest_streak = $3, updated_at = NOW() WHERE id = $1`,
		userID, result.Streaks.CurrentStreak, result.Streaks.LongestStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to update streaks: %w", err)
	}

	xpAward := progress.CheckInXP(
		metrics.EffectiveMood(),
		metrics.EffectiveStressManagement(),
		metrics.EffectiveEnergy(),
		metrics.EffectiveMotivation(),
	)
	granted, err := s.progress.GrantDailyXP(ctx, userID, date, idempotency.TaskCheckIn, xpAward)
	if err != nil {
		return nil, err
	}
	if granted {
		result.XPAwarded = xpAward
	}

	counts, err := s.progress.Counts(ctx, userID, result.Streaks.CurrentStreak)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.progress.EvaluateAchievements(ctx, userID, counts)
	if err != nil {
		return nil, err
	}
	result.NewlyUnlocked = unlocks

	err = s.db.QueryRow(ctx, `SELECT xp FROM users WHERE id = $1`, userID).Scan(&result.TotalXP)
	if err != nil {
		return nil, fmt.Errorf("failed to read xp: %w", err)
	}
	result.Level = progress.LevelForXP(result.TotalXP)

	s.notifyAfterSubmit(ctx, userID, granted, result)

	return result, nil
}

func (s *CheckInService) notifyAfterSubmit(ctx context.Context, userID uuid.UUID, firstToday bool, result *checkin.SubmitResult) {
	for _, unlock := range result.NewlyUnlocked {
		err := s.notifications.Notify(ctx, userID, notification.NotificationAchievement,
			"Achievement unlocked!",
			fmt.Sprintf("%s (+%d XP)", unlock.Label, unlock.XPReward),
			map[string]any{"achievement_id": unlock.ID, "xp_reward": unlock.XPReward})
		if err != nil {
			log.Printf("Failed to send unlock notification for %s: %v", unlock.ID, err)
		}
	}

	if firstToday && streakMilestones[result.Streaks.CurrentStreak] {
		err := s.notifications.Notify(ctx, userID, notification.NotificationStreakMilestone,
			"Streak milestone!",
			fmt.Sprintf("%d days of check-ins in a row. Keep it going!", result.Streaks.CurrentStreak),
			map[string]any{"streak": result.Streaks.CurrentStreak})
		if err != nil {
			log.Printf("Failed to send streak notification: %v", err)
		}
	}

	earned := result.XPAwarded
	for _, unlock := range result.NewlyUnlocked {
		earned += unlock.XPReward
	}
	if earned > 0 && progress.LevelForXP(result.TotalXP-earned) < result.Level {
		err := s.notifications.Notify(ctx, userID, notification.NotificationLevelUp,
			"Level up!",
			fmt.Sprintf("You reached level %d", result.Level),
			map[string]any{"level": result.Level})
		if err != nil {
			log.Printf("Failed to send level-up notification: %v", err)
		}
	}
}

func (s *CheckInService) checkInDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
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
	return dates, nil
}

const checkInColumns = `id, user_id, date, mood_rating, energy_level, stress_management,
                  motivation, sleep_hours, confidence, focus, recovery, note,
                  created_at, updated_at`

func scanCheckIn(row pgx.Row) (*checkin.CheckIn, error) {
	record := &checkin.CheckIn{}
	err := row.Scan(
		&record.ID, &record.UserID, &record.Date, &record.MoodRating, &record.EnergyLevel,
		&record.StressManagement, &record.Motivation, &record.SleepHours, &record.Confidence,
		&record.Focus, &record.Recovery, &record.Note, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.WellbeingScore = wellbeing.Score(record.Metrics())
	return record, nil
}

// GetHistory returns the full ordered check-in history with derived
// wellbeing scores, oldest first, ready for the trend chart.
func (s *CheckInService) GetHistory(ctx context.Context, clerkID string) ([]checkin.HistoryEntry, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE user_id = $1 ORDER BY date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins: %w", err)
	}
	defer rows.Close()

	history := []checkin.HistoryEntry{}
	for rows.Next() {
		record, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		history = append(history, checkin.HistoryEntry{
			Date:           record.Date,
			WellbeingScore: record.WellbeingScore,
			CheckIn:        record,
		})
	}
	return history, nil
}

// GetToday returns today's check-in, or nil when the athlete has not checked
// in yet.
func (s *CheckInService) GetToday(ctx context.Context, clerkID string) (*checkin.CheckIn, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	record, err := scanCheckIn(s.db.QueryRow(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE user_id = $1 AND date = CURRENT_DATE`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch today's check-in: %w", err)
	}
	return record, nil
}

// GetCalendar builds the month view: one entry per day with check-in status
// and derived wellbeing score.
func (s *CheckInService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	rows, err := s.db.Query(ctx,
		`SELECT `+checkInColumns+` FROM check_ins WHERE user_id = $1 AND date >= $2 AND date < $3 ORDER BY date ASC`,
		userID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month check-ins: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		record, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		scores[record.Date.Format("2006-01-02")] = record.WellbeingScore
	}

	today := time.Now().Format("2006-01-02")
	response := &calendar.CalendarResponse{Year: year, Month: month}
	for d := monthStart; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		day := &calendar.CalendarDay{
			Date:    d,
			IsToday: key == today,
		}
		if score, ok := scores[key]; ok {
			day.CheckedIn = true
			score := score
			day.WellbeingScore = &score
		}
		response.Days = append(response.Days, day)
	}

	return response, nil
}
