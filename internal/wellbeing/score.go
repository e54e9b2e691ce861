package wellbeing

import "math"

// Metrics holds the sub-metrics of a single check-in. Nil means the athlete
// did not report that metric; scoring substitutes the neutral midpoint.
// Stress is the legacy field (higher = worse) and is only consulted when
// StressManagement is absent.
type Metrics struct {
	Mood             *float64
	StressManagement *float64
	Stress           *float64
	Energy           *float64
	Motivation       *float64
	Confidence       *float64
	Focus            *float64
	Recovery         *float64
	Sleep            *float64
}

func orNeutral(v *float64) float64 {
	if v == nil {
		return NeutralRaw
	}
	return *v
}

// EffectiveMood, EffectiveEnergy and EffectiveMotivation return the raw 1-10
// values used everywhere downstream (scoring, XP, recommendations).
// Motivation falls back to the mood/energy average when not reported.
func (m Metrics) EffectiveMood() float64   { return orNeutral(m.Mood) }
func (m Metrics) EffectiveEnergy() float64 { return orNeutral(m.Energy) }

func (m Metrics) EffectiveMotivation() float64 {
	if m.Motivation != nil {
		return *m.Motivation
	}
	return (m.EffectiveMood() + m.EffectiveEnergy()) / 2
}

// EffectiveStressManagement resolves the stress-management rating on the raw
// scale. The legacy stress field mirrors onto it: Normalize(11-s) equals
// 100 - Normalize(s), so the raw mirror and the normalized inversion agree.
func (m Metrics) EffectiveStressManagement() float64 {
	if m.StressManagement != nil {
		return *m.StressManagement
	}
	if m.Stress != nil {
		return ScaleMax + ScaleMin - *m.Stress
	}
	return NeutralRaw
}

// Score collapses a check-in into a single 0-100 wellbeing value: the eight
// recognized sub-metrics normalized and averaged. Total and deterministic;
// a fully empty check-in scores 44.
func Score(m Metrics) int {
	normalized := []float64{
		Normalize(m.EffectiveMood()),
		Normalize(m.EffectiveStressManagement()),
		Normalize(m.EffectiveEnergy()),
		Normalize(m.EffectiveMotivation()),
		Normalize(orNeutral(m.Confidence)),
		Normalize(orNeutral(m.Focus)),
		Normalize(orNeutral(m.Recovery)),
		Normalize(orNeutral(m.Sleep)),
	}

	sum := 0.0
	for _, n := range normalized {
		sum += n
	}

	return int(math.Round(sum / float64(len(normalized))))
}
