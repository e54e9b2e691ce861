package progress

import "math"

const (
	// LevelBandXP is the fixed width of every level band.
	LevelBandXP = 100

	// CheckInBaseXP is awarded for any completed daily check-in.
	CheckInBaseXP = 10

	// CoreMetricBaseline is the neutral sum of the four core metrics
	// (mood, stress management, energy, motivation at 5 each). Only the
	// surplus above it earns bonus XP.
	CoreMetricBaseline = 20

	// Daily XP for the non-check-in tasks, granted at most once per day each.
	ExerciseXP  = 15
	ResourceXP  = 5
	EducationXP = 5
)

// LevelForXP returns the level for a cumulative XP total. Levels start at 1
// and advance every LevelBandXP. Monotonic in totalXP.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/LevelBandXP + 1
}

// XPThresholdForLevel is the inverse: the total XP at which the given level
// begins. Level 1 begins at 0.
func XPThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * LevelBandXP
}

// LevelProgress reports how far into the current band totalXP sits and the
// band width, for progress bars.
func LevelProgress(totalXP int) (into int, band int) {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP - XPThresholdForLevel(LevelForXP(totalXP)), LevelBandXP
}

// CheckInXP computes the XP award for one check-in from its four core raw
// metrics: base plus whatever their sum clears above the neutral baseline.
func CheckInXP(mood, stressManagement, energy, motivation float64) int {
	surplus := mood + stressManagement + energy + motivation - CoreMetricBaseline
	if surplus < 0 {
		surplus = 0
	}
	return CheckInBaseXP + int(math.Round(surplus))
}
