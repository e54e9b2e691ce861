package wellbeing

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestNormalizeBounds(t *testing.T) {
	if got := Normalize(ScaleMin); got != 0 {
		t.Fatalf("Normalize(min)=%v, want 0", got)
	}
	if got := Normalize(ScaleMax); got != 100 {
		t.Fatalf("Normalize(max)=%v, want 100", got)
	}
	if got := Normalize(NeutralRaw); math.Abs(got-44.444444) > 0.0001 {
		t.Fatalf("Normalize(midpoint)=%v, want ~44.44", got)
	}
}

func TestNormalizeClampsOutOfRange(t *testing.T) {
	for _, raw := range []float64{-5, 0, 0.5, 11, 250} {
		got := Normalize(raw)
		if got < 0 || got > 100 {
			t.Fatalf("Normalize(%v)=%v, out of [0,100]", raw, got)
		}
	}
	if got := Normalize(-5); got != 0 {
		t.Fatalf("Normalize(-5)=%v, want 0", got)
	}
	if got := Normalize(42); got != 100 {
		t.Fatalf("Normalize(42)=%v, want 100", got)
	}
}

func TestInvertStressMatchesRawMirror(t *testing.T) {
	// Normalize(11-s) and 100-Normalize(s) must agree on the whole scale.
	for s := 1.0; s <= 10.0; s++ {
		if got, want := Normalize(ScaleMax+ScaleMin-s), InvertStress(s); math.Abs(got-want) > 1e-9 {
			t.Fatalf("stress %v: raw mirror %v != inversion %v", s, got, want)
		}
	}
}

func TestScoreAllDefaults(t *testing.T) {
	if got := Score(Metrics{}); got != 44 {
		t.Fatalf("Score(empty)=%d, want 44", got)
	}
}

func TestScorePerfectCheckIn(t *testing.T) {
	m := Metrics{
		Mood: f(10), StressManagement: f(10), Energy: f(10), Motivation: f(10),
		Confidence: f(10), Focus: f(10), Recovery: f(10), Sleep: f(10),
	}
	if got := Score(m); got != 100 {
		t.Fatalf("Score(perfect)=%d, want 100", got)
	}
}

func TestScoreLegacyStressInverted(t *testing.T) {
	// Very high legacy stress should score like very low stress management.
	high := Score(Metrics{Stress: f(10)})
	low := Score(Metrics{StressManagement: f(1)})
	if high != low {
		t.Fatalf("legacy stress 10 scored %d, stress management 1 scored %d", high, low)
	}

	// Explicit stress management wins over the legacy field.
	both := Metrics{StressManagement: f(8), Stress: f(8)}
	if got := both.EffectiveStressManagement(); got != 8 {
		t.Fatalf("EffectiveStressManagement=%v, want 8", got)
	}
}

func TestScoreDerivedMotivation(t *testing.T) {
	m := Metrics{Mood: f(2), Energy: f(8)}
	if got := m.EffectiveMotivation(); got != 5 {
		t.Fatalf("EffectiveMotivation=%v, want 5", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	m := Metrics{Mood: f(7), Energy: f(3), Stress: f(6), Sleep: f(8)}
	first := Score(m)
	for i := 0; i < 10; i++ {
		if got := Score(m); got != first {
			t.Fatalf("Score not deterministic: %d then %d", first, got)
		}
	}
}

func TestRecommendAllLow(t *testing.T) {
	m := Metrics{Mood: f(1), StressManagement: f(1), Energy: f(1), Motivation: f(1)}
	recs := Recommend(m)

	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}

	foundRecovery := false
	lastRank := -1
	for _, r := range recs {
		if r.Exercise == "recovery" {
			foundRecovery = true
		}
		rank := priorityRank(r.Priority)
		if rank < lastRank {
			t.Fatalf("recommendations not priority-sorted: %+v", recs)
		}
		lastRank = rank
	}
	if !foundRecovery {
		t.Fatalf("comprehensive recovery missing from top-3: %+v", recs)
	}
}

func TestRecommendNothingWhenFine(t *testing.T) {
	m := Metrics{Mood: f(8), StressManagement: f(9), Energy: f(7), Motivation: f(8)}
	if recs := Recommend(m); len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %+v", recs)
	}
}

func TestRecommendSingleRule(t *testing.T) {
	m := Metrics{Mood: f(8), StressManagement: f(3), Energy: f(7), Motivation: f(8)}
	recs := Recommend(m)
	if len(recs) != 1 || recs[0].Exercise != "breathing" || recs[0].Priority != PriorityHigh {
		t.Fatalf("expected single high-priority breathing recommendation, got %+v", recs)
	}
}
