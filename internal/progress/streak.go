package progress

import "time"

// StreakSummary is derived from the full ordered check-in history.
type StreakSummary struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	TotalCheckIns int `json:"total_check_ins"`
}

// dayOrdinal collapses a timestamp to a calendar-day number in its own
// location, so streak adjacency follows the athlete's local calendar.
func dayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// ComputeStreaks walks check-in dates in ascending order and reports the
// running streaks. Two dates extend a streak only when exactly one calendar
// day apart; a gap of two or more days starts a new streak. The current
// streak is only alive when the most recent check-in is today or yesterday
// relative to now; otherwise it reports 0. Duplicate dates are skipped, not
// double-counted.
func ComputeStreaks(dates []time.Time, now time.Time) StreakSummary {
	if len(dates) == 0 {
		return StreakSummary{}
	}

	var summary StreakSummary
	run := 0
	prev := 0

	for _, d := range dates {
		ord := dayOrdinal(d)
		switch {
		case run == 0:
			run = 1
		case ord == prev:
			continue
		case ord == prev+1:
			run++
		default:
			run = 1
		}
		prev = ord
		summary.TotalCheckIns++
		if run > summary.LongestStreak {
			summary.LongestStreak = run
		}
	}

	// The streak survives overnight but dies after a full missed day.
	if prev >= dayOrdinal(now)-1 {
		summary.CurrentStreak = run
	}

	return summary
}

// StreakAtRisk reports whether the streak is alive only through yesterday's
// check-in, meaning it resets at midnight unless the athlete checks in today.
func StreakAtRisk(dates []time.Time, now time.Time) bool {
	if len(dates) == 0 {
		return false
	}
	last := 0
	for _, d := range dates {
		if ord := dayOrdinal(d); ord > last {
			last = ord
		}
	}
	return last == dayOrdinal(now)-1
}
