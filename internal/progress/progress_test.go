package progress

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{-50, 1},
	}
	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.want {
			t.Fatalf("LevelForXP(%d)=%d, want %d", c.xp, got, c.want)
		}
	}

	if got := XPThresholdForLevel(1); got != 0 {
		t.Fatalf("XPThresholdForLevel(1)=%d, want 0", got)
	}
	if got := XPThresholdForLevel(3); got != 200 {
		t.Fatalf("XPThresholdForLevel(3)=%d, want 200", got)
	}
}

func TestLevelMonotonicAndRoundTrip(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 1000; xp += 7 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("level decreased at xp=%d", xp)
		}
		prev = level

		if XPThresholdForLevel(level) > xp {
			t.Fatalf("threshold(level(%d)) > %d", xp, xp)
		}
		if xp >= XPThresholdForLevel(level+1) {
			t.Fatalf("xp=%d already past next threshold", xp)
		}
	}
}

func TestLevelProgress(t *testing.T) {
	into, band := LevelProgress(250)
	if into != 50 || band != LevelBandXP {
		t.Fatalf("LevelProgress(250)=(%d,%d), want (50,%d)", into, band, LevelBandXP)
	}
}

func TestCheckInXP(t *testing.T) {
	// Neutral metrics: no surplus, base only.
	if got := CheckInXP(5, 5, 5, 5); got != CheckInBaseXP {
		t.Fatalf("neutral check-in XP=%d, want %d", got, CheckInBaseXP)
	}
	// Surplus of 16 above the baseline.
	if got := CheckInXP(9, 9, 9, 9); got != CheckInBaseXP+16 {
		t.Fatalf("high check-in XP=%d, want %d", got, CheckInBaseXP+16)
	}
	// Bad day never pays less than base.
	if got := CheckInXP(1, 1, 1, 1); got != CheckInBaseXP {
		t.Fatalf("low check-in XP=%d, want %d", got, CheckInBaseXP)
	}
}

func TestStreaksEmpty(t *testing.T) {
	got := ComputeStreaks(nil, day("2024-01-03"))
	if got != (StreakSummary{}) {
		t.Fatalf("empty history: %+v, want zeros", got)
	}
}

func TestStreaksConsecutive(t *testing.T) {
	dates := []time.Time{day("2024-01-01"), day("2024-01-02"), day("2024-01-03")}
	got := ComputeStreaks(dates, day("2024-01-03"))
	want := StreakSummary{CurrentStreak: 3, LongestStreak: 3, TotalCheckIns: 3}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStreaksGapBreaks(t *testing.T) {
	dates := []time.Time{day("2024-01-01"), day("2024-01-05")}

	got := ComputeStreaks(dates, day("2024-01-05"))
	want := StreakSummary{CurrentStreak: 1, LongestStreak: 1, TotalCheckIns: 2}
	if got != want {
		t.Fatalf("evaluated same day: got %+v, want %+v", got, want)
	}

	// Long after the last check-in the current streak is broken.
	got = ComputeStreaks(dates, day("2024-02-01"))
	want = StreakSummary{CurrentStreak: 0, LongestStreak: 1, TotalCheckIns: 2}
	if got != want {
		t.Fatalf("evaluated later: got %+v, want %+v", got, want)
	}
}

func TestStreaksSurvivesOvernight(t *testing.T) {
	dates := []time.Time{day("2024-01-01"), day("2024-01-02")}
	got := ComputeStreaks(dates, day("2024-01-03"))
	if got.CurrentStreak != 2 {
		t.Fatalf("yesterday's streak should still be alive: %+v", got)
	}
}

func TestStreaksSingleToday(t *testing.T) {
	got := ComputeStreaks([]time.Time{day("2024-01-03")}, day("2024-01-03"))
	want := StreakSummary{CurrentStreak: 1, LongestStreak: 1, TotalCheckIns: 1}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStreaksDuplicatesNotDoubleCounted(t *testing.T) {
	dates := []time.Time{day("2024-01-01"), day("2024-01-01"), day("2024-01-02")}
	got := ComputeStreaks(dates, day("2024-01-02"))
	want := StreakSummary{CurrentStreak: 2, LongestStreak: 2, TotalCheckIns: 2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStreaksLongestInMiddle(t *testing.T) {
	dates := []time.Time{
		day("2024-01-01"), day("2024-01-02"), day("2024-01-03"), day("2024-01-04"),
		day("2024-01-10"), day("2024-01-11"),
	}
	got := ComputeStreaks(dates, day("2024-01-11"))
	want := StreakSummary{CurrentStreak: 2, LongestStreak: 4, TotalCheckIns: 6}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStreakAtRisk(t *testing.T) {
	// Last check-in was yesterday: the streak dies at midnight.
	dates := []time.Time{day("2024-01-01"), day("2024-01-02")}
	if !StreakAtRisk(dates, day("2024-01-03")) {
		t.Fatal("streak ending yesterday not reported at risk")
	}

	// Already checked in today: safe.
	if StreakAtRisk(append(dates, day("2024-01-03")), day("2024-01-03")) {
		t.Fatal("streak continued today reported at risk")
	}

	// Streak already broken: nothing left to warn about.
	if StreakAtRisk(dates, day("2024-01-05")) {
		t.Fatal("dead streak reported at risk")
	}

	if StreakAtRisk(nil, day("2024-01-03")) {
		t.Fatal("empty history reported at risk")
	}

	// Unordered input still finds the latest check-in.
	shuffled := []time.Time{day("2024-01-02"), day("2024-01-01")}
	if !StreakAtRisk(shuffled, day("2024-01-03")) {
		t.Fatal("unordered history not reported at risk")
	}
}

func TestStreaksIdempotent(t *testing.T) {
	dates := []time.Time{day("2024-01-01"), day("2024-01-02"), day("2024-01-04")}
	now := day("2024-01-04")
	first := ComputeStreaks(dates, now)
	if second := ComputeStreaks(dates, now); second != first {
		t.Fatalf("not idempotent: %+v then %+v", first, second)
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Definition{
		{ID: "streak-7", Label: "One Week Strong", Group: GroupCheckins, Target: 7, XPReward: 50},
		{ID: "exercise-10", Label: "Regular", Group: GroupExercise, Target: 10, XPReward: 50},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestEvaluateUnlocksOnce(t *testing.T) {
	c := testCatalog(t)

	unlocked := c.Evaluate(Counts{CheckInStreak: 7}, map[string]bool{})
	if len(unlocked) != 1 || unlocked[0].ID != "streak-7" || unlocked[0].XPReward != 50 {
		t.Fatalf("first evaluation: got %+v, want streak-7 for 50 XP", unlocked)
	}

	// Same counts with the unlock recorded: nothing new.
	again := c.Evaluate(Counts{CheckInStreak: 7}, map[string]bool{"streak-7": true})
	if len(again) != 0 {
		t.Fatalf("second evaluation returned %+v, want none", again)
	}
}

func TestEvaluateBelowTarget(t *testing.T) {
	c := testCatalog(t)
	if got := c.Evaluate(Counts{CheckInStreak: 6, ExercisesCompleted: 9}, nil); len(got) != 0 {
		t.Fatalf("below-target counters unlocked %+v", got)
	}
}

func TestEvaluateNegativeCountersTreatedAsZero(t *testing.T) {
	c := testCatalog(t)
	if got := c.Evaluate(Counts{CheckInStreak: -3, ExercisesCompleted: -1}, nil); len(got) != 0 {
		t.Fatalf("negative counters unlocked %+v", got)
	}
}

func TestEvaluateMultipleCrossedInCatalogOrder(t *testing.T) {
	c := DefaultCatalog()
	unlocked := c.Evaluate(Counts{CheckInStreak: 7}, nil)
	if len(unlocked) != 2 || unlocked[0].ID != "streak-3" || unlocked[1].ID != "streak-7" {
		t.Fatalf("got %+v, want streak-3 then streak-7", unlocked)
	}
}

func TestNewCatalogRejectsBadDefinitions(t *testing.T) {
	if _, err := NewCatalog([]Definition{{ID: "x", Group: "nonsense", Target: 1}}); err == nil {
		t.Fatal("expected error for unknown group")
	}
	if _, err := NewCatalog([]Definition{
		{ID: "x", Group: GroupCheckins, Target: 1},
		{ID: "x", Group: GroupCheckins, Target: 2},
	}); err == nil {
		t.Fatal("expected error for duplicate id")
	}
	if _, err := NewCatalog([]Definition{{ID: "x", Group: GroupCheckins, Target: 0}}); err == nil {
		t.Fatal("expected error for non-positive target")
	}
}
