package stats

// UserStats is the dashboard aggregate: streaks and totals from the check-in
// history, level/XP from the progress core, and the recent wellbeing trend.
type UserStats struct {
	TodayCheckedIn     bool    `json:"today_checked_in"`
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	TotalCheckIns      int     `json:"total_check_ins"`
	TotalXP            int     `json:"total_xp"`
	Level              int     `json:"level"`
	XPIntoLevel        int     `json:"xp_into_level"`
	XPBand             int     `json:"xp_band"`
	WellbeingAvg7Days  float64 `json:"wellbeing_avg_7_days"`
	WellbeingToday     *int    `json:"wellbeing_today,omitempty"`
	AchievementsCount  int     `json:"achievements_count"`
	ExercisesCompleted int     `json:"exercises_completed"`
	ResourcesViewed    int     `json:"resources_viewed"`
	EducationViewed    int     `json:"education_viewed"`
}
