package wellbeing

import "sort"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Recommendation points the athlete at a guided exercise based on today's
// check-in. Exercise values match the slugs of the guided-exercise catalog.
type Recommendation struct {
	Exercise string   `json:"exercise"`
	Reason   string   `json:"reason"`
	Priority Priority `json:"priority"`
}

const maxRecommendations = 3

// Recommend applies independent threshold rules over the four core metrics of
// a single check-in and returns at most three recommendations, high priority
// first, stable by rule order within a tier. An empty result means every
// metric looks fine and the caller shows positive reinforcement instead.
func Recommend(m Metrics) []Recommendation {
	mood := m.EffectiveMood()
	stressMgmt := m.EffectiveStressManagement()
	energy := m.EffectiveEnergy()
	motivation := m.EffectiveMotivation()

	var recs []Recommendation

	if stressMgmt <= 4 {
		recs = append(recs, Recommendation{
			Exercise: "breathing",
			Reason:   "Your stress management is low today. A short breathing session can help you reset.",
			Priority: PriorityHigh,
		})
	}
	if motivation <= 2 {
		recs = append(recs, Recommendation{
			Exercise: "confidence",
			Reason:   "Motivation is running very low. A confidence exercise can rebuild momentum.",
			Priority: PriorityHigh,
		})
	}
	if energy <= 2 {
		recs = append(recs, Recommendation{
			Exercise: "mindfulness",
			Reason:   "Energy is very low. A mindfulness session helps recharge without draining you further.",
			Priority: PriorityMedium,
		})
	}
	if mood <= 2 {
		recs = append(recs, Recommendation{
			Exercise: "visualization",
			Reason:   "Mood is very low today. Visualization can shift your focus to what went well.",
			Priority: PriorityMedium,
		})
	}

	lowCount := 0
	for _, v := range []float64{mood, stressMgmt, energy, motivation} {
		if v <= 4 {
			lowCount++
		}
	}
	if lowCount >= 2 {
		recs = append(recs, Recommendation{
			Exercise: "recovery",
			Reason:   "Several metrics are low at once. A comprehensive recovery session is the best use of your time today.",
			Priority: PriorityHigh,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
