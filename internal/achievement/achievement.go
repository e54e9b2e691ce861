package achievement

import (
	"time"

	"github.com/google/uuid"

	"athleteMindAPI/internal/progress"
)

// Achievement is a catalog row as stored in Postgres. The catalog is seeded
// from progress.DefaultCatalog and treated as static configuration.
type Achievement struct {
	ID        string         `json:"id" db:"id"`
	Label     string         `json:"label" db:"label"`
	Group     progress.Group `json:"group" db:"group_name"`
	Target    int            `json:"target" db:"target"`
	XPReward  int            `json:"xp_reward" db:"xp_reward"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// UserAchievement records an unlock. (user_id, achievement_id) is unique, so
// replaying an unlock is a storage-level no-op.
type UserAchievement struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
}

type AchievementWithStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
