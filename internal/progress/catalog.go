package progress

import "fmt"

// Group names the counter an achievement watches.
type Group string

const (
	GroupCheckins  Group = "checkins"
	GroupExercise  Group = "exercise"
	GroupResource  Group = "resource"
	GroupEducation Group = "education"
)

// Counts carries the athlete's current counters into an evaluation. Negative
// values are treated as zero by the evaluator.
type Counts struct {
	CheckInStreak      int
	ExercisesCompleted int
	ResourcesViewed    int
	EducationViewed    int
}

// Definition is one entry of the static achievement catalog.
type Definition struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Group    Group  `json:"group"`
	Target   int    `json:"target"`
	XPReward int    `json:"xp_reward"`
}

type selector func(Counts) int

// Catalog binds each definition to its counter selector once, at load time,
// so evaluation is a flat pass with no per-call dispatch on the group string.
type Catalog struct {
	defs      []Definition
	selectors []selector
}

func selectorForGroup(g Group) (selector, error) {
	switch g {
	case GroupCheckins:
		return func(c Counts) int { return c.CheckInStreak }, nil
	case GroupExercise:
		return func(c Counts) int { return c.ExercisesCompleted }, nil
	case GroupResource:
		return func(c Counts) int { return c.ResourcesViewed }, nil
	case GroupEducation:
		return func(c Counts) int { return c.EducationViewed }, nil
	default:
		return nil, fmt.Errorf("unknown achievement group: %q", g)
	}
}

// NewCatalog validates the definitions and resolves their selectors.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		defs:      make([]Definition, 0, len(defs)),
		selectors: make([]selector, 0, len(defs)),
	}
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("achievement with empty id")
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("duplicate achievement id: %q", def.ID)
		}
		if def.Target <= 0 {
			return nil, fmt.Errorf("achievement %q: target must be positive", def.ID)
		}
		if def.XPReward < 0 {
			return nil, fmt.Errorf("achievement %q: negative xp reward", def.ID)
		}
		sel, err := selectorForGroup(def.Group)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", def.ID, err)
		}
		seen[def.ID] = true
		c.defs = append(c.defs, def)
		c.selectors = append(c.selectors, sel)
	}
	return c, nil
}

// Definitions returns the catalog entries in declaration order.
func (c *Catalog) Definitions() []Definition {
	return c.defs
}

// DefaultCatalog is the production achievement set.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Definition{
		{ID: "streak-3", Label: "Warming Up", Group: GroupCheckins, Target: 3, XPReward: 20},
		{ID: "streak-7", Label: "One Week Strong", Group: GroupCheckins, Target: 7, XPReward: 50},
		{ID: "streak-30", Label: "Monthly Mindset", Group: GroupCheckins, Target: 30, XPReward: 200},
		{ID: "streak-100", Label: "Century Club", Group: GroupCheckins, Target: 100, XPReward: 500},
		{ID: "exercise-1", Label: "First Session", Group: GroupExercise, Target: 1, XPReward: 15},
		{ID: "exercise-10", Label: "Regular", Group: GroupExercise, Target: 10, XPReward: 50},
		{ID: "exercise-25", Label: "Dedicated", Group: GroupExercise, Target: 25, XPReward: 100},
		{ID: "exercise-50", Label: "Mental Athlete", Group: GroupExercise, Target: 50, XPReward: 250},
		{ID: "resource-5", Label: "Curious", Group: GroupResource, Target: 5, XPReward: 25},
		{ID: "resource-20", Label: "Well Read", Group: GroupResource, Target: 20, XPReward: 75},
		{ID: "education-5", Label: "Student of the Game", Group: GroupEducation, Target: 5, XPReward: 25},
		{ID: "education-20", Label: "Sports Scholar", Group: GroupEducation, Target: 20, XPReward: 75},
	})
	if err != nil {
		// The default catalog is static; a bad entry is a programming error.
		panic(err)
	}
	return c
}
