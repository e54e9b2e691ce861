package checkin

import (
	"time"

	"github.com/google/uuid"

	"athleteMindAPI/internal/progress"
	"athleteMindAPI/internal/wellbeing"
)

// CheckIn is one athlete's self-report for one calendar day. At most one row
// exists per (user, date); a same-day resubmission updates it in place.
type CheckIn struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	Date             time.Time  `json:"date" db:"date"`
	MoodRating       *float64   `json:"mood_rating" db:"mood_rating"`
	EnergyLevel      *float64   `json:"energy_level" db:"energy_level"`
	StressManagement *float64   `json:"stress_management" db:"stress_management"`
	Motivation       *float64   `json:"motivation,omitempty" db:"motivation"`
	SleepHours       *float64   `json:"sleep_hours,omitempty" db:"sleep_hours"`
	Confidence       *float64   `json:"confidence,omitempty" db:"confidence"`
	Focus            *float64   `json:"focus,omitempty" db:"focus"`
	Recovery         *float64   `json:"recovery,omitempty" db:"recovery"`
	Note             *string    `json:"note,omitempty" db:"note"`
	WellbeingScore   int        `json:"wellbeing_score"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Metrics converts the stored record into the pure scoring input.
func (c *CheckIn) Metrics() wellbeing.Metrics {
	return wellbeing.Metrics{
		Mood:             c.MoodRating,
		StressManagement: c.StressManagement,
		Energy:           c.EnergyLevel,
		Motivation:       c.Motivation,
		Confidence:       c.Confidence,
		Focus:            c.Focus,
		Recovery:         c.Recovery,
		Sleep:            c.SleepHours,
	}
}

// SubmitRequest is the check-in submission body. The legacy client field
// names (mood, energy, stress, sleep) are accepted alongside the current
// ones; stress is the inverted higher=worse form.
type SubmitRequest struct {
	Date             string   `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	MoodRating       *float64 `json:"mood_rating,omitempty"`
	Mood             *float64 `json:"mood,omitempty"`
	EnergyLevel      *float64 `json:"energy_level,omitempty"`
	Energy           *float64 `json:"energy,omitempty"`
	StressManagement *float64 `json:"stress_management,omitempty"`
	Stress           *float64 `json:"stress,omitempty"`
	Motivation       *float64 `json:"motivation,omitempty"`
	SleepHours       *float64 `json:"sleep_hours,omitempty"`
	Sleep            *float64 `json:"sleep,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
	Focus            *float64 `json:"focus,omitempty"`
	Recovery         *float64 `json:"recovery,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
	Note             *string  `json:"note,omitempty"`
}

func firstOf(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

// Metrics resolves the field aliases into the canonical scoring input.
func (r *SubmitRequest) Metrics() wellbeing.Metrics {
	return wellbeing.Metrics{
		Mood:             firstOf(r.MoodRating, r.Mood),
		StressManagement: r.StressManagement,
		Stress:           r.Stress,
		Energy:           firstOf(r.EnergyLevel, r.Energy),
		Motivation:       r.Motivation,
		Confidence:       r.Confidence,
		Focus:            r.Focus,
		Recovery:         r.Recovery,
		Sleep:            firstOf(r.SleepHours, r.Sleep),
	}
}

// NoteText resolves the notes/note alias.
func (r *SubmitRequest) NoteText() *string {
	if r.Notes != nil {
		return r.Notes
	}
	return r.Note
}

// SubmitResult is everything the client needs to render after a check-in:
// the stored record plus every derived value and side effect of submitting.
type SubmitResult struct {
	CheckIn         *CheckIn                   `json:"check_in"`
	WellbeingScore  int                        `json:"wellbeing_score"`
	XPAwarded       int                        `json:"xp_awarded"`
	TotalXP         int                        `json:"total_xp"`
	Level           int                        `json:"level"`
	Streaks         progress.StreakSummary     `json:"streaks"`
	NewlyUnlocked   []progress.Unlock          `json:"newly_unlocked"`
	Recommendations []wellbeing.Recommendation `json:"recommendations"`
}

// HistoryEntry pairs a stored record with its derived wellbeing score for
// the trend chart.
type HistoryEntry struct {
	Date           time.Time `json:"date"`
	WellbeingScore int       `json:"wellbeing_score"`
	CheckIn        *CheckIn  `json:"check_in"`
}
