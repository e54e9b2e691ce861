package wellbeing

const (
	// ScaleMin and ScaleMax define the 1-10 rating scale check-in metrics use.
	ScaleMin = 1.0
	ScaleMax = 10.0

	// NeutralRaw is the midpoint rating substituted for a missing metric.
	NeutralRaw = 5.0
)

// Normalize maps a raw 1-10 rating onto a 0-100 scale. Out-of-range input is
// clamped, never rejected.
func Normalize(raw float64) float64 {
	return NormalizeScale(raw, ScaleMin, ScaleMax)
}

// NormalizeScale maps raw from [scaleMin, scaleMax] onto [0, 100], clamped.
func NormalizeScale(raw, scaleMin, scaleMax float64) float64 {
	if scaleMax <= scaleMin {
		return 0
	}
	n := (raw - scaleMin) / (scaleMax - scaleMin) * 100
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// InvertStress converts the legacy stress rating (higher = worse) into the
// stress-management orientation on the normalized scale. This is the canonical
// inversion; the old raw-scale "11 - stress*2" form is not supported.
func InvertStress(stress float64) float64 {
	return 100 - Normalize(stress)
}
