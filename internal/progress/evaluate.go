package progress

// Unlock is emitted once per achievement, the first time its counter reaches
// the target. The caller persists it (idempotent by ID) before treating it as
// final; re-emitting the same ID on retry must be a storage-level no-op.
type Unlock struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	XPReward int    `json:"xp_reward"`
}

func clampCounter(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Evaluate compares the counters against every catalog entry not already in
// priorUnlocked and returns the newly crossed ones, in catalog order.
// Re-invoking with the same counts and an updated priorUnlocked yields
// nothing further. Malformed (negative) counters evaluate as zero.
func (c *Catalog) Evaluate(counts Counts, priorUnlocked map[string]bool) []Unlock {
	counts = Counts{
		CheckInStreak:      clampCounter(counts.CheckInStreak),
		ExercisesCompleted: clampCounter(counts.ExercisesCompleted),
		ResourcesViewed:    clampCounter(counts.ResourcesViewed),
		EducationViewed:    clampCounter(counts.EducationViewed),
	}

	var unlocked []Unlock
	for i, def := range c.defs {
		if priorUnlocked[def.ID] {
			continue
		}
		if c.selectors[i](counts) >= def.Target {
			unlocked = append(unlocked, Unlock{
				ID:       def.ID,
				Label:    def.Label,
				XPReward: def.XPReward,
			})
		}
	}
	return unlocked
}
